// cmd/server/main.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"muzplay.kz/internal/billing"
	"muzplay.kz/internal/config"
	"muzplay.kz/internal/db"
	"muzplay.kz/internal/handlers"
	"muzplay.kz/internal/middleware"
	"muzplay.kz/internal/otp"
	"muzplay.kz/internal/payment_gateway/vnpay"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	configPath := "configs/config.yaml"
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Критическая ошибка: не удалось загрузить конфигурацию: %v\n", err)
		os.Exit(1)
	}

	config.InitLogger(cfg.AppEnv)
	slog.Info("Запуск сервера MuzPlay...", "app_env", cfg.AppEnv)

	err = db.InitDB(cfg)
	if err != nil {
		slog.Error("Критическая ошибка: не удалось инициализировать базу данных", "error", err)
		os.Exit(1)
	}
	if db.DB != nil {
		defer db.DB.Close()
	} else {
		slog.Error("Критическая ошибка: подключение к БД равно nil после InitDB")
		os.Exit(1)
	}
	slog.Info("База данных успешно инициализирована и миграции применены.")

	usersDB := db.NewUsersDB(db.DB)
	premiumsDB := db.NewPremiumsDB(db.DB)
	paymentsDB := db.NewPaymentsDB(db.DB)

	// Секрет и код мерчанта уже провалидированы в LoadConfig; здесь
	// конструктор лишь страхует от нестандартного пути инициализации.
	gateway, err := vnpay.New(cfg.VNPay)
	if err != nil {
		slog.Error("Критическая ошибка: не удалось инициализировать платёжный шлюз", "error", err)
		os.Exit(1)
	}

	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Cookie.Name = "muzplay_session"
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.AppEnv == "production"
	sessionManager.Cookie.Path = "/"

	slog.Info("Менеджер сессий инициализирован", "store", "mysqlstore", "lifetime", sessionManager.Lifetime, "secure_cookie", sessionManager.Cookie.Secure)

	otpStore := otp.NewStore(time.Duration(cfg.OtpTTLMinutes) * time.Minute)
	go otpStore.CleanupLoop(10 * time.Minute)

	sessionVip := middleware.NewSessionVip(sessionManager)
	billingService := billing.NewService(premiumsDB, paymentsDB, usersDB, gateway, sessionVip)

	appHandlers, err := handlers.NewAppHandlers(cfg, sessionManager)
	if err != nil {
		slog.Error("Критическая ошибка: не удалось инициализировать обработчики страниц", "error", err)
		os.Exit(1)
	}
	authHandlers := handlers.NewAuthHandlers(sessionManager, appHandlers, cfg, usersDB, otpStore)
	premiumHandlers := handlers.NewPremiumHandlers(sessionManager, appHandlers, billingService, premiumsDB)
	profileHandlers := handlers.NewProfileHandlers(appHandlers, paymentsDB)

	mainMux := http.NewServeMux()
	fs := http.FileServer(http.Dir("./static"))
	mainMux.Handle("/static/", http.StripPrefix("/static/", fs))

	// Middleware
	injectUserMiddleware := middleware.InjectUserData(sessionManager, usersDB)
	requireAuthMiddleware := middleware.RequireAuthentication(sessionManager, usersDB)
	requireVipMiddleware := middleware.RequireVip(sessionManager)

	// Public Routes
	mainMux.Handle("/", injectUserMiddleware(http.HandlerFunc(appHandlers.WelcomePageHandler)))

	// Auth Routes
	mainMux.Handle("/register", injectUserMiddleware(http.HandlerFunc(authHandlers.RegisterPageHandler)))
	mainMux.Handle("/register/send-otp", middleware.RateLimitMiddleware(http.HandlerFunc(authHandlers.RegisterSendOtpHandler), 0.2, 3))
	mainMux.HandleFunc("/register/verify", authHandlers.RegisterVerifyHandler)
	mainMux.Handle("/login", injectUserMiddleware(http.HandlerFunc(authHandlers.LoginPageHandler)))
	mainMux.Handle("/api/login", middleware.RateLimitMiddleware(http.HandlerFunc(authHandlers.LoginHandler), 1, 5))
	mainMux.HandleFunc("/api/logout", authHandlers.LogoutHandler)

	// Premium / Billing Routes
	mainMux.Handle("/premium", injectUserMiddleware(http.HandlerFunc(premiumHandlers.ListHandler)))
	mainMux.Handle("/premium/pay", requireAuthMiddleware(http.HandlerFunc(premiumHandlers.PayHandler)))
	// Возврат шлюза: без аутентификации — шлюз не несёт cookie пользователя.
	mainMux.Handle("/payment/vnpay-return", injectUserMiddleware(http.HandlerFunc(premiumHandlers.VNPayReturnHandler)))

	// Authenticated User Routes
	mainMux.Handle("/profile", requireAuthMiddleware(injectUserMiddleware(http.HandlerFunc(profileHandlers.ProfilePageHandler))))
	mainMux.Handle("/vip", requireAuthMiddleware(requireVipMiddleware(injectUserMiddleware(http.HandlerFunc(profileHandlers.VipPageHandler)))))

	// Оборачиваем основной MUX в CSRF-защиту
	csrfProtectedRoutes := middleware.NoSurfMiddleware(mainMux, cfg.AppEnv == "production")

	// Обёртываем в менеджер сессий
	finalHandler := sessionManager.LoadAndSave(csrfProtectedRoutes)

	addr := fmt.Sprintf(":%d", cfg.Port)
	slog.Info("Сервер MuzPlay запущен и слушает", "address", fmt.Sprintf("http://localhost%s", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  240 * time.Second,
	}

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Критическая ошибка: не удалось запустить HTTP-сервер", "address", addr, "error", err)
		os.Exit(1)
	}
}
