package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("не удалось записать временный конфиг: %v", err)
	}
	return path
}

const validYAML = `
site_name: "MuzPlay"
base_url: "http://localhost:8080"
app_env: "development"
database:
  host: "127.0.0.1"
  port: 3306
  user: "muzplay"
  dbname: "muzplay"
vnpay:
  base_url: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
  tmn_code: "MUZPLAY1"
  hash_secret: "secret123"
`

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, validYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080 по умолчанию", cfg.Port)
	}
	if cfg.VNPay.Version != "2.1.0" {
		t.Errorf("vnpay.version = %q, want 2.1.0 по умолчанию", cfg.VNPay.Version)
	}
	if cfg.VNPay.Command != "pay" {
		t.Errorf("vnpay.command = %q, want pay по умолчанию", cfg.VNPay.Command)
	}
	if cfg.VNPay.CurrCode != "VND" {
		t.Errorf("vnpay.curr_code = %q, want VND по умолчанию", cfg.VNPay.CurrCode)
	}
	if cfg.OtpTTLMinutes != 5 {
		t.Errorf("otp_ttl_minutes = %d, want 5 по умолчанию", cfg.OtpTTLMinutes)
	}
	if cfg.VNPay.ReturnURL != "http://localhost:8080/payment/vnpay-return" {
		t.Errorf("vnpay.return_url = %q, ожидался BASE_URL + /payment/vnpay-return", cfg.VNPay.ReturnURL)
	}
}

func TestLoadConfigMissingVNPaySecret(t *testing.T) {
	path := writeConfigFile(t, `
base_url: "http://localhost:8080"
database:
  host: "127.0.0.1"
  user: "muzplay"
  dbname: "muzplay"
vnpay:
  base_url: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
  tmn_code: "MUZPLAY1"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() без vnpay.hash_secret должен вернуть ошибку")
	}
}

func TestLoadConfigMissingTmnCode(t *testing.T) {
	path := writeConfigFile(t, `
base_url: "http://localhost:8080"
database:
  host: "127.0.0.1"
  user: "muzplay"
  dbname: "muzplay"
vnpay:
  base_url: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"
  hash_secret: "secret123"
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() без vnpay.tmn_code должен вернуть ошибку")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, validYAML)

	t.Setenv("VNPAY_HASH_SECRET", "env-secret")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.VNPay.HashSecret != "env-secret" {
		t.Errorf("hash_secret = %q, переменная окружения должна перекрывать YAML", cfg.VNPay.HashSecret)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 из переменной окружения", cfg.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadConfig() по несуществующему пути должен вернуть ошибку")
	}
}

func TestLoadConfigProductionRequiresHTTPS(t *testing.T) {
	path := writeConfigFile(t, `
base_url: "http://muzplay.kz"
app_env: "production"
database:
  host: "127.0.0.1"
  user: "muzplay"
  dbname: "muzplay"
vnpay:
  base_url: "https://pay.vnpay.vn/vpcpay.html"
  tmn_code: "MUZPLAY1"
  hash_secret: "secret123"
`)

	t.Setenv("CSRF_AUTH_KEY", "32-byte-auth-key-for-csrf-tokens")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() в production с http:// BASE_URL должен вернуть ошибку")
	}
}
