package vnpay

import (
	"net/url"
	"strings"
	"testing"
)

const testSecret = "VNPAYSECRETKEY123"

func TestCanonicalizeSortsKeysBytewise(t *testing.T) {
	params := map[string]string{
		"vnp_TxnRef":  "42",
		"vnp_Amount":  "9900000",
		"vnp_TmnCode": "MUZPLAY1",
	}

	got := Canonicalize(params)
	want := "vnp_Amount=9900000&vnp_TmnCode=MUZPLAY1&vnp_TxnRef=42"
	if got != want {
		t.Fatalf("Canonicalize() = %q, want %q", got, want)
	}
}

func TestCanonicalizeEncodesSpacesAsPercent20(t *testing.T) {
	params := map[string]string{
		"vnp_OrderInfo": "Оплата Premium-тарифа: Premium 1 месяц",
	}

	got := Canonicalize(params)
	if strings.Contains(got, "+") {
		t.Errorf("Canonicalize() содержит '+' вместо %%20: %q", got)
	}
	if !strings.Contains(got, "%20") {
		t.Errorf("Canonicalize() не закодировал пробел как %%20: %q", got)
	}
}

func TestCanonicalizeIndependentOfInsertionOrder(t *testing.T) {
	a := map[string]string{}
	b := map[string]string{}

	pairs := [][2]string{
		{"vnp_Version", "2.1.0"},
		{"vnp_Command", "pay"},
		{"vnp_TmnCode", "MUZPLAY1"},
		{"vnp_Amount", "9900000"},
		{"vnp_TxnRef", "7"},
		{"vnp_OrderInfo", "Оплата Premium"},
	}
	for _, p := range pairs {
		a[p[0]] = p[1]
	}
	for i := len(pairs) - 1; i >= 0; i-- {
		b[pairs[i][0]] = pairs[i][1]
	}

	if Canonicalize(a) != Canonicalize(b) {
		t.Error("каноническая строка зависит от порядка вставки в map")
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	canonical := Canonicalize(map[string]string{
		"vnp_TxnRef":       "42",
		"vnp_ResponseCode": "00",
		"vnp_Amount":       "9900000",
	})

	hash := Sign(testSecret, canonical)
	if hash != strings.ToLower(hash) {
		t.Errorf("Sign() вернул hex не в нижнем регистре: %q", hash)
	}
	if len(hash) != 128 {
		t.Errorf("Sign() вернул hex длины %d, ожидалось 128 (SHA-512)", len(hash))
	}

	if !Verify(testSecret, canonical, hash) {
		t.Error("Verify() отклонил корректную подпись")
	}
	if !Verify(testSecret, canonical, strings.ToUpper(hash)) {
		t.Error("Verify() отклонил подпись в верхнем регистре")
	}
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	original := Canonicalize(map[string]string{
		"vnp_TxnRef":       "42",
		"vnp_ResponseCode": "00",
	})
	hash := Sign(testSecret, original)

	tampered := Canonicalize(map[string]string{
		"vnp_TxnRef":       "43",
		"vnp_ResponseCode": "00",
	})
	if Verify(testSecret, tampered, hash) {
		t.Error("Verify() принял подпись для изменённых данных")
	}

	if Verify("wrong-secret", original, hash) {
		t.Error("Verify() принял подпись с чужим секретом")
	}
}

func TestSplitCallbackParams(t *testing.T) {
	query := url.Values{}
	query.Set("vnp_TxnRef", "42")
	query.Set("vnp_ResponseCode", "00")
	query.Set("vnp_SecureHash", "abc123")
	query.Set("vnp_SecureHashType", "HMACSHA512")
	query.Set("utm_source", "email")

	signed, providedHash := SplitCallbackParams(query)

	if providedHash != "abc123" {
		t.Errorf("providedHash = %q, want %q", providedHash, "abc123")
	}
	if _, ok := signed["vnp_SecureHash"]; ok {
		t.Error("vnp_SecureHash не должен попадать в подписываемые поля")
	}
	if _, ok := signed["vnp_SecureHashType"]; ok {
		t.Error("vnp_SecureHashType не должен попадать в подписываемые поля")
	}
	if _, ok := signed["utm_source"]; ok {
		t.Error("параметры без префикса vnp_ не должны попадать в подписываемые поля")
	}
	if signed["vnp_TxnRef"] != "42" || signed["vnp_ResponseCode"] != "00" {
		t.Errorf("подписанные поля извлечены неверно: %v", signed)
	}
}
