// internal/middleware/vip.go
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"muzplay.kz/internal/models"

	"github.com/alexedwards/scs/v2"
)

// RequireVip пропускает только VIP-пользователей. Сначала смотрим кэш в
// сессии; если признака там нет, а пользователь VIP по БД — чиним кэш,
// чтобы следующий запрос не перечитывал флаг.
func RequireVip(sessionManager *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(UserContextKey).(*models.User)
			if !ok || user == nil {
				slog.Error("RequireVip: пользователь не найден в контексте, хотя ожидался.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			isVip := sessionManager.GetBool(r.Context(), SessionKeyIsVip)
			if !isVip && user.IsVip {
				sessionManager.Put(r.Context(), SessionKeyIsVip, true)
				isVip = true
			}

			if !isVip {
				slog.Warn("Доступ запрещён: требуется VIP-статус", "userID", user.ID, "path", r.URL.Path)
				if strings.HasPrefix(r.URL.Path, "/api/") || r.Header.Get("Accept") == "application/json" {
					http.Error(w, "Для доступа к этому ресурсу требуется VIP-статус.", http.StatusForbidden)
				} else {
					http.Redirect(w, r, "/premium", http.StatusSeeOther)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
