package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"muzplay.kz/internal/models"
	"muzplay.kz/internal/payment_gateway/vnpay"
)

// MethodVNPay — фиксированное имя платёжного канала в записи Payment.
const MethodVNPay = "VNPay"

var ErrPremiumNotFound = errors.New("premium tier not found")

type PremiumStore interface {
	GetByID(ctx context.Context, premiumID int64) (*models.Premium, error)
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) (int64, error)
	GetByTxnRef(ctx context.Context, txnRef string) (*models.Payment, error)
	MarkTerminal(ctx context.Context, paymentID int64, status models.PaymentStatus, transactionID, responseCode string) (bool, error)
}

type UserStore interface {
	SetVip(ctx context.Context, userID int64, vip bool) error
}

// SessionVipRefresher обновляет VIP-признак в живой сессии запроса.
type SessionVipRefresher interface {
	RefreshVipClaim(ctx context.Context, vip bool) error
}

type Service struct {
	premiums PremiumStore
	payments PaymentStore
	users    UserStore
	gateway  *vnpay.Gateway
	session  SessionVipRefresher
	now      func() time.Time
}

func NewService(premiums PremiumStore, payments PaymentStore, users UserStore, gateway *vnpay.Gateway, session SessionVipRefresher) *Service {
	return &Service{
		premiums: premiums,
		payments: payments,
		users:    users,
		gateway:  gateway,
		session:  session,
		now:      time.Now,
	}
}

// BuildPaymentRedirect создаёт Pending-платёж по выбранному тарифу и
// возвращает подписанную ссылку редиректа на шлюз. Платёж фиксируется в БД
// до построения ссылки: его ID уходит в шлюз как vnp_TxnRef.
func (s *Service) BuildPaymentRedirect(ctx context.Context, userID, premiumID int64, clientIP string) (string, error) {
	premium, err := s.premiums.GetByID(ctx, premiumID)
	if err != nil {
		return "", fmt.Errorf("ошибка поиска тарифа %d: %w", premiumID, err)
	}
	if premium == nil {
		return "", ErrPremiumNotFound
	}

	// Цена копируется в платёж на момент покупки: более позднее изменение
	// тарифа не меняет исторические записи.
	payment := &models.Payment{
		UserID:    userID,
		PremiumID: premium.PremiumID,
		Amount:    premium.Price,
		Method:    MethodVNPay,
		Status:    models.PaymentStatusPending,
		Date:      s.now(),
	}
	paymentID, err := s.payments.Create(ctx, payment)
	if err != nil {
		return "", fmt.Errorf("ошибка создания платежа: %w", err)
	}

	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	// Шлюз ждёт сумму целым числом минимальных единиц; усечение при
	// приведении принимается как есть.
	paymentURL := s.gateway.BuildPaymentURL(vnpay.OrderParams{
		TxnRef:     strconv.FormatInt(paymentID, 10),
		Amount:     int64(premium.Price) * 100,
		OrderInfo:  fmt.Sprintf("Оплата Premium-тарифа: %s", premium.Name),
		IPAddr:     clientIP,
		CreateDate: s.now(),
	})

	slog.Info("Создан Pending-платёж, пользователь уходит на шлюз",
		"paymentID", paymentID, "userID", userID, "premiumID", premium.PremiumID, "amount", premium.Price)
	return paymentURL, nil
}

// HandleCallback обрабатывает возврат шлюза. Запрос не аутентифицирован,
// поэтому владельцем платежа считается Payment.UserID из БД, а не какое-либо
// утверждение из параметров; sessionUserID — пользователь живой сессии
// (0, если сессии нет) и нужен только для best-effort обновления её
// VIP-признака.
//
// Ошибка возвращается только при сбое хранилища; все протокольные случаи
// (неизвестный референс, плохая подпись, отказ шлюза, повтор) выражаются
// через Outcome.
func (s *Service) HandleCallback(ctx context.Context, query url.Values, sessionUserID int64) (Outcome, error) {
	fields, validSignature := s.gateway.VerifyCallback(query)

	txnRef := fields[vnpay.ParamTxnRef]
	responseCode := fields[vnpay.ParamResponseCode]
	transactionNo := fields[vnpay.ParamTransactionNo]
	orderInfo := fields[vnpay.ParamOrderInfo]

	payment, err := s.payments.GetByTxnRef(ctx, txnRef)
	if err != nil {
		return Outcome{}, fmt.Errorf("ошибка поиска платежа по референсу: %w", err)
	}
	if payment == nil {
		slog.Warn("Callback с неизвестным референсом", "txnRef", txnRef)
		return Outcome{Kind: OutcomeUnknownTransaction}, nil
	}

	// Конечный статус не меняется: повторный callback лишь возвращает
	// уже записанный результат, без повторной выдачи VIP.
	if payment.Status.Terminal() {
		slog.Info("Повторный callback по завершённому платежу", "paymentID", payment.PaymentID, "status", payment.Status)
		return s.replayOutcome(payment), nil
	}

	if !validSignature {
		// Платёж найден, но подпись неверна: помечаем Failed, чтобы
		// подделанный callback не оставил запись в Pending навсегда.
		won, err := s.payments.MarkTerminal(ctx, payment.PaymentID, models.PaymentStatusFailed, "", "")
		if err != nil {
			return Outcome{}, err
		}
		if !won {
			return s.reloadReplay(ctx, txnRef, payment)
		}
		slog.Warn("Callback с неверной подписью, платёж помечен Failed", "paymentID", payment.PaymentID)
		return Outcome{Kind: OutcomeInvalidSignature, Payment: payment}, nil
	}

	if responseCode != vnpay.ResponseCodeSuccess {
		won, err := s.payments.MarkTerminal(ctx, payment.PaymentID, models.PaymentStatusFailed, "", responseCode)
		if err != nil {
			return Outcome{}, err
		}
		if !won {
			return s.reloadReplay(ctx, txnRef, payment)
		}
		payment.Status = models.PaymentStatusFailed
		payment.ResponseCode = responseCode
		slog.Info("Шлюз отклонил платёж", "paymentID", payment.PaymentID, "responseCode", responseCode)
		return Outcome{Kind: OutcomeDeclined, ResponseCode: responseCode, Payment: payment}, nil
	}

	won, err := s.payments.MarkTerminal(ctx, payment.PaymentID, models.PaymentStatusSuccess, transactionNo, responseCode)
	if err != nil {
		return Outcome{}, err
	}
	if !won {
		return s.reloadReplay(ctx, txnRef, payment)
	}
	payment.Status = models.PaymentStatusSuccess
	payment.TransactionID = transactionNo
	payment.ResponseCode = responseCode

	// Статус уже записан; выдача VIP и обновление сессии не должны его
	// откатывать — при сбое фиксируем в логе и отдаём успех.
	if err := s.users.SetVip(ctx, payment.UserID, true); err != nil {
		slog.Error("Платёж успешен, но не удалось выдать VIP-статус", "paymentID", payment.PaymentID, "userID", payment.UserID, "error", err)
	} else if sessionUserID != 0 && sessionUserID == payment.UserID {
		if err := s.session.RefreshVipClaim(ctx, true); err != nil {
			slog.Warn("Не удалось обновить VIP-признак в сессии", "userID", payment.UserID, "error", err)
		}
	}

	slog.Info("Платёж успешно завершён, пользователь получил VIP",
		"paymentID", payment.PaymentID, "userID", payment.UserID, "transactionNo", transactionNo)
	return Outcome{Kind: OutcomeSuccess, ResponseCode: responseCode, OrderInfo: orderInfo, Payment: payment}, nil
}

// reloadReplay вызывается, когда конкурирующий callback успел перевести
// платёж в конечный статус между чтением и условным UPDATE. Перечитываем
// запись и возвращаем её результат как повтор.
func (s *Service) reloadReplay(ctx context.Context, txnRef string, fallback *models.Payment) (Outcome, error) {
	current, err := s.payments.GetByTxnRef(ctx, txnRef)
	if err != nil || current == nil {
		slog.Error("Не удалось перечитать платёж после проигранной гонки", "txnRef", txnRef, "error", err)
		return s.replayOutcome(fallback), nil
	}
	return s.replayOutcome(current), nil
}

func (s *Service) replayOutcome(payment *models.Payment) Outcome {
	return Outcome{
		Kind:         OutcomeReplayed,
		ResponseCode: payment.ResponseCode,
		Payment:      payment,
	}
}
