// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type VNPayConfig struct {
	BaseURL    string `yaml:"base_url"`
	ReturnURL  string `yaml:"return_url"`
	TmnCode    string `yaml:"tmn_code"`
	HashSecret string `yaml:"hash_secret"`
	Version    string `yaml:"version"`
	Command    string `yaml:"command"`
	CurrCode   string `yaml:"curr_code"`
	Locale     string `yaml:"locale"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type EmailConfig struct {
	SMTPhost     string `yaml:"smtp_host"`
	SMTPport     int    `yaml:"smtp_port"`
	SMTPuser     string `yaml:"smtp_user"`
	SMTPpassword string `yaml:"smtp_password"`
	Sender       string `yaml:"sender"`
}

type Config struct {
	SiteName        string         `yaml:"site_name"`
	SiteDescription string         `yaml:"site_description"`
	CurrentYear     int            `yaml:"current_year"`
	BaseURL         string         `yaml:"base_url"`
	Port            int            `yaml:"port"`
	AppEnv          string         `yaml:"app_env"`
	Database        DatabaseConfig `yaml:"database"`
	VNPay           VNPayConfig    `yaml:"vnpay"`
	Email           EmailConfig    `yaml:"email"`
	OtpTTLMinutes   int            `yaml:"otp_ttl_minutes"`
	CSRFAuthKey     string
}

func getStringEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
		slog.Warn("Не удалось преобразовать переменную окружения в число, используется значение по умолчанию", "key", key, "value", valueStr)
	}
	return defaultValue
}

func LoadConfig(filename string) (*Config, error) {
	appEnvFromSystem := os.Getenv("APP_ENV")
	if appEnvFromSystem != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			slog.Info("configs/.env не найден, это ожидаемо для production или если переменные заданы системно.", "error", err)
		} else {
			slog.Info("Переменные окружения загружены из configs/.env")
		}
	}

	file, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("файл конфигурации не найден: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла конфигурации '%s': %w", filename, err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка декодирования YAML из файла '%s': %w", filename, err)
	}

	cfg.AppEnv = getStringEnvOrDefault("APP_ENV", cfg.AppEnv)
	isProduction := cfg.AppEnv == "production"

	cfg.BaseURL = getStringEnvOrDefault("BASE_URL", cfg.BaseURL)
	cfg.Port = getIntEnvOrDefault("PORT", cfg.Port)

	cfg.Database.Password = getStringEnvOrDefault("DB_PASSWORD", "")
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.Path = dsn
		cfg.Database.Host = ""
		cfg.Database.Port = 0
		cfg.Database.User = ""
		cfg.Database.DBName = ""
	} else {
		cfg.Database.Host = getStringEnvOrDefault("DB_HOST", cfg.Database.Host)
		cfg.Database.Port = getIntEnvOrDefault("DB_PORT", cfg.Database.Port)
		cfg.Database.User = getStringEnvOrDefault("DB_USER", cfg.Database.User)
		cfg.Database.DBName = getStringEnvOrDefault("DB_NAME", cfg.Database.DBName)
		cfg.Database.Path = ""
	}

	// Секрет и код мерчанта — только критичные параметры шлюза.
	// Их отсутствие делает и построение ссылки, и проверку callback
	// невозможными, поэтому это ошибка запуска, а не запроса.
	cfg.VNPay.TmnCode = getStringEnvOrDefault("VNPAY_TMN_CODE", cfg.VNPay.TmnCode)
	cfg.VNPay.HashSecret = getStringEnvOrDefault("VNPAY_HASH_SECRET", cfg.VNPay.HashSecret)
	if cfg.VNPay.TmnCode == "" {
		slog.Error("КРИТИЧЕСКАЯ ОШИБКА: VNPAY_TMN_CODE (vnpay.tmn_code) не задан")
		return nil, fmt.Errorf("vnpay.tmn_code (VNPAY_TMN_CODE) не задан")
	}
	if cfg.VNPay.HashSecret == "" {
		slog.Error("КРИТИЧЕСКАЯ ОШИБКА: VNPAY_HASH_SECRET (vnpay.hash_secret) не задан")
		return nil, fmt.Errorf("vnpay.hash_secret (VNPAY_HASH_SECRET) не задан")
	}
	cfg.VNPay.BaseURL = getStringEnvOrDefault("VNPAY_BASE_URL", cfg.VNPay.BaseURL)
	if cfg.VNPay.BaseURL == "" {
		return nil, fmt.Errorf("vnpay.base_url не задан")
	}
	if cfg.VNPay.Version == "" {
		cfg.VNPay.Version = "2.1.0"
	}
	if cfg.VNPay.Command == "" {
		cfg.VNPay.Command = "pay"
	}
	if cfg.VNPay.CurrCode == "" {
		cfg.VNPay.CurrCode = "VND"
	}
	if cfg.VNPay.Locale == "" {
		cfg.VNPay.Locale = "vn"
	}

	cfg.CSRFAuthKey = getStringEnvOrDefault("CSRF_AUTH_KEY", "")
	if isProduction && cfg.CSRFAuthKey == "" {
		slog.Error("КРИТИЧЕСКАЯ ОШИБКА: CSRF_AUTH_KEY должен быть установлен в переменных окружения для production")
		return nil, fmt.Errorf("CSRF_AUTH_KEY должен быть установлен в переменных окружения для production")
	}

	cfg.Email.SMTPhost = getStringEnvOrDefault("SMTP_HOST", cfg.Email.SMTPhost)
	cfg.Email.SMTPport = getIntEnvOrDefault("SMTP_PORT", cfg.Email.SMTPport)
	cfg.Email.SMTPuser = getStringEnvOrDefault("SMTP_USER", cfg.Email.SMTPuser)
	cfg.Email.SMTPpassword = getStringEnvOrDefault("SMTP_PASSWORD", "") // Пароль SMTP — только из ENV
	cfg.Email.Sender = getStringEnvOrDefault("EMAIL_SENDER", cfg.Email.Sender)
	if isProduction && (cfg.Email.SMTPhost == "" || cfg.Email.Sender == "") {
		slog.Warn("Параметры SMTP (SMTP_HOST, EMAIL_SENDER) не полностью настроены для production. Отправка OTP-кодов может не работать.")
	}

	if cfg.CurrentYear == 0 {
		cfg.CurrentYear = time.Now().Year()
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.OtpTTLMinutes <= 0 {
		cfg.OtpTTLMinutes = 5
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL не задан")
	}
	if isProduction && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("в production окружении BASE_URL должен начинаться с https://")
	}
	if cfg.VNPay.ReturnURL == "" {
		cfg.VNPay.ReturnURL = cfg.BaseURL + "/payment/vnpay-return"
	}
	if cfg.Database.Path == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("параметры подключения к БД (DATABASE_DSN или DB_HOST и др.) не заданы")
	}
	if cfg.Database.Host != "" {
		if cfg.Database.User == "" {
			return nil, fmt.Errorf("DB_USER не задан для подключения к БД")
		}
		if cfg.Database.DBName == "" {
			return nil, fmt.Errorf("DB_NAME не задан для подключения к БД")
		}
	}

	slog.Info("Конфигурация загружена", "app_env", cfg.AppEnv, "base_url", cfg.BaseURL, "port", cfg.Port, "vnpay_return_url", cfg.VNPay.ReturnURL)
	return &cfg, nil
}

func InitLogger(appEnv string) {
	var logger *slog.Logger
	logLevel := slog.LevelInfo

	if appEnv == "development" {
		logLevel = slog.LevelDebug
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: false,
		}))
	}
	slog.SetDefault(logger)
}
