// internal/handlers/profile_handlers.go
package handlers

import (
	"log/slog"
	"net/http"

	"muzplay.kz/internal/db"
	"muzplay.kz/internal/middleware"
	"muzplay.kz/internal/models"
)

type ProfileHandlers struct {
	AppHandlers *AppHandlers
	Payments    *db.PaymentsDB
}

func NewProfileHandlers(ah *AppHandlers, payments *db.PaymentsDB) *ProfileHandlers {
	return &ProfileHandlers{AppHandlers: ah, Payments: payments}
}

// ProfilePageHandler показывает профиль и историю платежей пользователя.
func (h *ProfileHandlers) ProfilePageHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(middleware.UserContextKey).(*models.User)
	if !ok || user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	payments, err := h.Payments.ListByUser(r.Context(), user.ID, 50)
	if err != nil {
		slog.Error("Ошибка загрузки истории платежей", "userID", user.ID, "error", err)
		// Профиль важнее истории: показываем страницу без неё.
		payments = nil
	}

	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "Профиль"
	data.Payments = payments
	h.AppHandlers.RenderPage(w, r, "profile.html", data)
}

// VipPageHandler — страница VIP-раздела; маршрут закрыт middleware.RequireVip.
func (h *ProfileHandlers) VipPageHandler(w http.ResponseWriter, r *http.Request) {
	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "VIP-раздел"
	h.AppHandlers.RenderPage(w, r, "vip.html", data)
}
