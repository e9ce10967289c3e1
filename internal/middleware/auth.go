package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"muzplay.kz/internal/db"
	"muzplay.kz/internal/models"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

const UserIDContextKey contextKey = "userID"
const IsAuthenticatedContextKey contextKey = "isAuthenticated"
const UserContextKey contextKey = "user"

// Ключи данных сессии.
const (
	SessionKeyUserID = "userID"
	SessionKeyIsVip  = "isVip"
)

func RequireAuthentication(sessionManager *scs.SessionManager, users *db.UsersDB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessionManager.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				slog.Warn("Доступ запрещён: пользователь не аутентифицирован", "path", r.URL.Path)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			// Пользователь загружается здесь один раз и доступен во всех
			// защищённых обработчиках через контекст.
			user, err := users.GetByID(r.Context(), userID)
			if err != nil || user == nil || !user.IsActive {
				slog.Error("RequireAuthentication: пользователь не найден в БД или неактивен", "userID", userID, "error", err)
				sessionManager.Remove(r.Context(), SessionKeyUserID)
				http.Redirect(w, r, "/login?err=session_invalid", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
			ctx = context.WithValue(ctx, UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func InjectUserData(sessionManager *scs.SessionManager, users *db.UsersDB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			isAuthenticated := false
			var currentUser *models.User

			userFromAuth, ok := ctx.Value(UserContextKey).(*models.User)
			if ok && userFromAuth != nil {
				currentUser = userFromAuth
				isAuthenticated = true
			} else {
				// Публичные страницы: подгружаем пользователя из сессии,
				// если он залогинен, чтобы шапка показывала его имя.
				sessionUserID := sessionManager.GetInt64(ctx, SessionKeyUserID)
				if sessionUserID != 0 {
					userFromDB, err := users.GetByID(ctx, sessionUserID)
					if err == nil && userFromDB != nil {
						currentUser = userFromDB
						isAuthenticated = true
						ctx = context.WithValue(ctx, UserContextKey, currentUser)
					} else if err != nil {
						slog.Warn("InjectUserData: ошибка загрузки пользователя из сессии", "userID", sessionUserID, "error", err)
					}
				}
			}

			ctx = context.WithValue(ctx, IsAuthenticatedContextKey, isAuthenticated)
			if isAuthenticated {
				ctx = context.WithValue(ctx, UserIDContextKey, currentUser.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
