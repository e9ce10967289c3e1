package vnpay

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"muzplay.kz/internal/config"
)

func testGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := New(config.VNPayConfig{
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/payment/vnpay-return",
		TmnCode:    "MUZPLAY1",
		HashSecret: testSecret,
		Version:    "2.1.0",
		Command:    "pay",
		CurrCode:   "VND",
		Locale:     "vn",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return g
}

func TestNewRequiresSecretAndMerchantCode(t *testing.T) {
	_, err := New(config.VNPayConfig{TmnCode: "MUZPLAY1", BaseURL: "https://x"})
	if err == nil {
		t.Error("New() без hash_secret должен вернуть ошибку")
	}
	_, err = New(config.VNPayConfig{HashSecret: "s", BaseURL: "https://x"})
	if err == nil {
		t.Error("New() без tmn_code должен вернуть ошибку")
	}
	_, err = New(config.VNPayConfig{HashSecret: "s", TmnCode: "MUZPLAY1"})
	if err == nil {
		t.Error("New() без base_url должен вернуть ошибку")
	}
}

func TestBuildPaymentURLIsSelfVerifying(t *testing.T) {
	g := testGateway(t)

	createDate := time.Date(2026, 8, 31, 14, 30, 5, 0, time.Local)
	paymentURL := g.BuildPaymentURL(OrderParams{
		TxnRef:     "42",
		Amount:     9900000,
		OrderInfo:  "Оплата Premium-тарифа: Premium 1 месяц",
		IPAddr:     "203.0.113.7",
		CreateDate: createDate,
	})

	parsed, err := url.Parse(paymentURL)
	if err != nil {
		t.Fatalf("url.Parse(%q) error: %v", paymentURL, err)
	}
	if !strings.HasPrefix(paymentURL, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?") {
		t.Errorf("ссылка не начинается с base_url: %q", paymentURL)
	}
	if !strings.Contains(parsed.RawQuery, "&vnp_SecureHash=") {
		t.Errorf("vnp_SecureHash должен стоять в конце query-строки: %q", parsed.RawQuery)
	}

	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		t.Fatalf("url.ParseQuery error: %v", err)
	}

	if got := query.Get(ParamAmount); got != "9900000" {
		t.Errorf("vnp_Amount = %q, want %q", got, "9900000")
	}
	if got := query.Get(ParamTxnRef); got != "42" {
		t.Errorf("vnp_TxnRef = %q, want %q", got, "42")
	}
	if got := query.Get(ParamCreateDate); got != "20260831143005" {
		t.Errorf("vnp_CreateDate = %q, want %q", got, "20260831143005")
	}
	if got := query.Get(ParamCommand); got != "pay" {
		t.Errorf("vnp_Command = %q, want %q", got, "pay")
	}

	// Подпись исходящей ссылки должна проходить нашу же проверку callback.
	fields, valid := g.VerifyCallback(query)
	if !valid {
		t.Error("VerifyCallback() отклонил собственную подпись BuildPaymentURL")
	}
	if fields[ParamOrderInfo] != "Оплата Premium-тарифа: Premium 1 месяц" {
		t.Errorf("vnp_OrderInfo искажён: %q", fields[ParamOrderInfo])
	}
}

func TestVerifyCallbackRejectsMissingOrForgedHash(t *testing.T) {
	g := testGateway(t)

	query := url.Values{}
	query.Set(ParamTxnRef, "42")
	query.Set(ParamResponseCode, "00")

	if _, valid := g.VerifyCallback(query); valid {
		t.Error("VerifyCallback() без vnp_SecureHash должен вернуть false")
	}

	query.Set(ParamSecureHash, strings.Repeat("ab", 64))
	if _, valid := g.VerifyCallback(query); valid {
		t.Error("VerifyCallback() принял произвольную подпись")
	}

	// Корректная подпись, затем подмена поля.
	signed, _ := SplitCallbackParams(query)
	query.Set(ParamSecureHash, Sign(testSecret, Canonicalize(signed)))
	if _, valid := g.VerifyCallback(query); !valid {
		t.Fatal("VerifyCallback() отклонил корректную подпись")
	}
	query.Set(ParamTxnRef, "43")
	if _, valid := g.VerifyCallback(query); valid {
		t.Error("VerifyCallback() принял callback с подменённым vnp_TxnRef")
	}
}
