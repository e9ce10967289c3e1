package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// encodeComponent кодирует строку как компонент query-строки.
// Пробел кодируется как %20, а не как "+": шлюз канонизирует именно так,
// и любое расхождение ломает подпись.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Canonicalize строит каноническую строку подписи: пары key=value,
// отсортированные по ключу побайтово (не по локали), закодированные и
// склеенные через "&". Результат не зависит от порядка вставки в map.
func Canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(encodeComponent(k))
		sb.WriteByte('=')
		sb.WriteString(encodeComponent(params[k]))
	}
	return sb.String()
}

// Sign считает HMAC-SHA512 от канонической строки и возвращает
// подпись в нижнем регистре hex.
func Sign(secret, canonical string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify пересчитывает подпись и сравнивает с присланной.
// Сравнение регистронезависимое и с постоянным временем.
func Verify(secret, canonical, providedHex string) bool {
	expected := Sign(secret, canonical)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHex)))
}
