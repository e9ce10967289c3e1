package vnpay

import (
	"net/url"
	"strings"
)

// Имена параметров протокола VNPay. Шлюз пересчитывает подпись на своей
// стороне, поэтому написание должно совпадать байт в байт.
const (
	ParamVersion    = "vnp_Version"
	ParamCommand    = "vnp_Command"
	ParamTmnCode    = "vnp_TmnCode"
	ParamAmount     = "vnp_Amount"
	ParamCreateDate = "vnp_CreateDate"
	ParamCurrCode   = "vnp_CurrCode"
	ParamIPAddr     = "vnp_IpAddr"
	ParamLocale     = "vnp_Locale"
	ParamOrderInfo  = "vnp_OrderInfo"
	ParamOrderType  = "vnp_OrderType"
	ParamReturnURL  = "vnp_ReturnUrl"
	ParamTxnRef     = "vnp_TxnRef"
	ParamSecureHash = "vnp_SecureHash"

	ParamSecureHashType = "vnp_SecureHashType"
	ParamResponseCode   = "vnp_ResponseCode"
	ParamTransactionNo  = "vnp_TransactionNo"

	paramPrefix = "vnp_"

	// Формат vnp_CreateDate: yyyyMMddHHmmss, локальное время.
	CreateDateLayout = "20060102150405"

	// Код успешной транзакции в ответе шлюза.
	ResponseCodeSuccess = "00"
)

// SplitCallbackParams делит параметры callback на подписанные поля и
// присланную подпись. Подписываются все ключи с префиксом vnp_, кроме
// самой подписи и её типа — это транспортные метаданные, не контент.
func SplitCallbackParams(query url.Values) (signed map[string]string, providedHash string) {
	signed = make(map[string]string)
	for key := range query {
		if !strings.HasPrefix(key, paramPrefix) {
			continue
		}
		if key == ParamSecureHash || key == ParamSecureHashType {
			continue
		}
		signed[key] = query.Get(key)
	}
	return signed, query.Get(ParamSecureHash)
}
