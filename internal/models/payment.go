package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// Terminal сообщает, достиг ли платёж конечного статуса.
// Из конечного статуса переходов нет.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment — одна попытка покупки тарифа. PaymentID одновременно служит
// внешним референсом (vnp_TxnRef), который шлюз возвращает в callback.
type Payment struct {
	PaymentID     int64
	UserID        int64
	PremiumID     int64
	Amount        float64
	Method        string
	Status        PaymentStatus
	TransactionID string
	ResponseCode  string
	Date          time.Time
	UpdatedAt     time.Time
}
