// internal/handlers/premium_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"muzplay.kz/internal/billing"
	"muzplay.kz/internal/db"
	"muzplay.kz/internal/middleware"
	"muzplay.kz/internal/models"

	"github.com/alexedwards/scs/v2"
)

type PremiumHandlers struct {
	SessionManager *scs.SessionManager
	AppHandlers    *AppHandlers
	Billing        *billing.Service
	Premiums       *db.PremiumsDB
}

func NewPremiumHandlers(sm *scs.SessionManager, ah *AppHandlers, billingSvc *billing.Service, premiums *db.PremiumsDB) *PremiumHandlers {
	return &PremiumHandlers{
		SessionManager: sm,
		AppHandlers:    ah,
		Billing:        billingSvc,
		Premiums:       premiums,
	}
}

// ListHandler показывает витрину активных тарифов по возрастанию цены.
func (h *PremiumHandlers) ListHandler(w http.ResponseWriter, r *http.Request) {
	premiums, err := h.Premiums.ListActive(r.Context())
	if err != nil {
		slog.Error("Ошибка загрузки списка тарифов", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "Premium-тарифы"
	data.Premiums = premiums
	h.AppHandlers.RenderPage(w, r, "premium_list.html", data)
}

// PayHandler создаёт Pending-платёж и уводит браузер на шлюз.
func (h *PremiumHandlers) PayHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(*models.User)
	if !ok || user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	premiumID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || premiumID <= 0 {
		http.NotFound(w, r)
		return
	}

	paymentURL, err := h.Billing.BuildPaymentRedirect(r.Context(), user.ID, premiumID, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, billing.ErrPremiumNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Ошибка построения ссылки на оплату", "userID", user.ID, "premiumID", premiumID, "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, paymentURL, http.StatusFound)
}

// VNPayReturnHandler принимает возврат шлюза. Маршрут намеренно не требует
// аутентификации: шлюз не несёт cookie пользователя, а владелец платежа
// определяется по записи в БД.
func (h *PremiumHandlers) VNPayReturnHandler(w http.ResponseWriter, r *http.Request) {
	sessionUserID := h.SessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	outcome, err := h.Billing.HandleCallback(r.Context(), r.URL.Query(), sessionUserID)
	if err != nil {
		slog.Error("Ошибка обработки callback шлюза", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "Результат оплаты"

	switch outcome.Kind {
	case billing.OutcomeSuccess:
		data.Message = "Оплата прошла успешно! VIP-доступ активирован."
		data.OrderInfo = outcome.OrderInfo
	case billing.OutcomeDeclined:
		data.Message = fmt.Sprintf("Оплата не прошла. Код ответа шлюза: %s.", outcome.ResponseCode)
	case billing.OutcomeInvalidSignature:
		// Детали проверки подписи наружу не выходят.
		data.Message = "Оплата не прошла. Попробуйте ещё раз или обратитесь в поддержку."
	case billing.OutcomeUnknownTransaction:
		data.Message = "Транзакция не найдена."
	case billing.OutcomeReplayed:
		if outcome.Payment != nil && outcome.Payment.Status == models.PaymentStatusSuccess {
			data.Message = "Этот платёж уже был успешно обработан."
		} else {
			data.Message = "Этот платёж уже был обработан и отклонён."
		}
	default:
		data.Message = "Не удалось обработать результат оплаты."
	}

	h.AppHandlers.RenderPage(w, r, "payment_result.html", data)
}
