package vnpay

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"muzplay.kz/internal/config"
)

// Gateway собирает исходящие ссылки на оплату и проверяет подписи
// входящих callback. Секрет и код мерчанта валидируются при создании,
// а не на каждый запрос.
type Gateway struct {
	cfg config.VNPayConfig
}

func New(cfg config.VNPayConfig) (*Gateway, error) {
	if cfg.HashSecret == "" {
		return nil, fmt.Errorf("vnpay: hash secret is not configured")
	}
	if cfg.TmnCode == "" {
		return nil, fmt.Errorf("vnpay: merchant code (tmn_code) is not configured")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("vnpay: base url is not configured")
	}
	return &Gateway{cfg: cfg}, nil
}

// OrderParams — переменная часть исходящего запроса; остальные параметры
// берутся из конфигурации мерчанта.
type OrderParams struct {
	TxnRef     string
	Amount     int64 // в минимальных денежных единицах (цена * 100)
	OrderInfo  string
	IPAddr     string
	CreateDate time.Time
}

// BuildPaymentURL составляет полную ссылку редиректа на шлюз:
// канонизированные параметры, подпись и vnp_SecureHash в конце query-строки.
func (g *Gateway) BuildPaymentURL(p OrderParams) string {
	params := map[string]string{
		ParamVersion:    g.cfg.Version,
		ParamCommand:    g.cfg.Command,
		ParamTmnCode:    g.cfg.TmnCode,
		ParamAmount:     strconv.FormatInt(p.Amount, 10),
		ParamCreateDate: p.CreateDate.Format(CreateDateLayout),
		ParamCurrCode:   g.cfg.CurrCode,
		ParamIPAddr:     p.IPAddr,
		ParamLocale:     g.cfg.Locale,
		ParamOrderInfo:  p.OrderInfo,
		ParamOrderType:  "other",
		ParamReturnURL:  g.cfg.ReturnURL,
		ParamTxnRef:     p.TxnRef,
	}

	rawData := Canonicalize(params)
	secureHash := Sign(g.cfg.HashSecret, rawData)

	return g.cfg.BaseURL + "?" + rawData + "&" + ParamSecureHash + "=" + secureHash
}

// VerifyCallback выделяет подписанные поля callback и проверяет подпись
// секретом мерчанта. Поля возвращаются всегда — извлекать их до проверки
// допустимо, доверять им можно только при valid == true.
func (g *Gateway) VerifyCallback(query url.Values) (fields map[string]string, valid bool) {
	fields, providedHash := SplitCallbackParams(query)
	if providedHash == "" {
		return fields, false
	}
	rawData := Canonicalize(fields)
	return fields, Verify(g.cfg.HashSecret, rawData, providedHash)
}
