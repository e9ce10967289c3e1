package billing

import "muzplay.kz/internal/models"

type OutcomeKind string

const (
	// OutcomeSuccess — подпись верна, шлюз подтвердил оплату, платёж
	// переведён в Success, пользователь получил VIP.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomeDeclined — подпись верна, но шлюз отклонил транзакцию.
	OutcomeDeclined OutcomeKind = "declined"
	// OutcomeInvalidSignature — подпись callback не прошла проверку.
	OutcomeInvalidSignature OutcomeKind = "invalid_signature"
	// OutcomeUnknownTransaction — референс не соответствует ни одному платежу.
	OutcomeUnknownTransaction OutcomeKind = "unknown_transaction"
	// OutcomeReplayed — платёж уже в конечном статусе; повторный callback
	// ничего не меняет и лишь возвращает ранее записанный результат.
	OutcomeReplayed OutcomeKind = "replayed"
)

// Outcome — результат обработки callback для отображения пользователю.
// Сырая подпись и секрет наружу не выходят.
type Outcome struct {
	Kind         OutcomeKind
	ResponseCode string // код ответа шлюза, для declined и replayed
	OrderInfo    string
	Payment      *models.Payment
}
