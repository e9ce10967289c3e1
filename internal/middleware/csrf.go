// internal/middleware/csrf.go
package middleware

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/justinas/nosurf"
)

// NoSurfMiddleware обеспечивает CSRF-защиту.
// isProduction: true для production окружения (Secure cookie).
func NoSurfMiddleware(next http.Handler, isProduction bool) http.Handler {
	csrfHandler := nosurf.New(next)

	csrfAuthKey := os.Getenv("CSRF_AUTH_KEY")
	if csrfAuthKey == "" {
		if isProduction {
			slog.Error("КРИТИЧЕСКАЯ ОШИБКА: CSRF_AUTH_KEY не установлена в переменных окружения для production!")
		} else {
			slog.Warn("CSRF_AUTH_KEY не установлена! Используется ключ, генерируемый nosurf по умолчанию (НЕБЕЗОПАСНО для production).")
		}
	}

	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	csrfHandler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("Неудачная проверка CSRF токена", "path", r.URL.Path, "method", r.Method, "reason", nosurf.Reason(r))
		http.Error(w, "Ошибка безопасности: Неверный или отсутствующий CSRF токен.", http.StatusForbidden)
	}))

	return csrfHandler
}
