// internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"muzplay.kz/internal/auth"
	"muzplay.kz/internal/config"
	"muzplay.kz/internal/db"
	"muzplay.kz/internal/email"
	"muzplay.kz/internal/middleware"
	"muzplay.kz/internal/models"
	"muzplay.kz/internal/otp"
	"muzplay.kz/internal/validation"

	"github.com/alexedwards/scs/v2"
)

type AuthHandlers struct {
	SessionManager *scs.SessionManager
	AppHandlers    *AppHandlers
	AppConfig      *config.Config
	Users          *db.UsersDB
	OtpStore       *otp.Store
}

func NewAuthHandlers(sm *scs.SessionManager, ah *AppHandlers, cfg *config.Config, users *db.UsersDB, otpStore *otp.Store) *AuthHandlers {
	return &AuthHandlers{
		SessionManager: sm,
		AppHandlers:    ah,
		AppConfig:      cfg,
		Users:          users,
		OtpStore:       otpStore,
	}
}

func (h *AuthHandlers) RegisterPageHandler(w http.ResponseWriter, r *http.Request) {
	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "Регистрация"
	data.Form = models.RegistrationForm{}
	h.AppHandlers.RenderPage(w, r, "register.html", data)
}

// RegisterSendOtpHandler — первый шаг регистрации: валидация формы,
// выдача тикета с кодом подтверждения и отправка кода на email.
func (h *AuthHandlers) RegisterSendOtpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Метод не поддерживается", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		slog.Error("Ошибка парсинга формы регистрации", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	form := models.RegistrationForm{
		Username:    r.PostForm.Get("username"),
		Email:       r.PostForm.Get("email"),
		Password:    r.PostForm.Get("password"),
		ConfirmPass: r.PostForm.Get("confirm_password"),
		Honeypot:    r.PostForm.Get("website"),
	}

	if form.Honeypot != "" {
		http.Error(w, "Обнаружена подозрительная активность", http.StatusBadRequest)
		return
	}

	validationErrors := validation.ValidateStruct(form)
	if validationErrors == nil {
		validationErrors = url.Values{}
	}

	if len(validationErrors) == 0 {
		existing, err := h.Users.GetByEmail(r.Context(), form.Email)
		if err != nil {
			slog.Error("Ошибка проверки существующего email", "email", form.Email, "error", err)
			http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			validationErrors.Add("email", "Пользователь с таким email уже зарегистрирован.")
		}
	}

	if len(validationErrors) > 0 {
		slog.Warn("Ошибки валидации при регистрации", "errors", validationErrors)
		form.Password = ""
		form.ConfirmPass = ""
		data := h.AppHandlers.NewPageData(r)
		data.PageTitle = "Регистрация"
		data.Form = form
		data.Errors = validationErrors
		h.AppHandlers.RenderPage(w, r, "register.html", data)
		return
	}

	passwordHash, err := auth.HashPassword(form.Password)
	if err != nil {
		slog.Error("Ошибка хэширования пароля", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	code, err := otp.GenerateCode()
	if err != nil {
		slog.Error("Ошибка генерации кода подтверждения", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	ticket := h.OtpStore.Put(otp.PendingRegistration{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: passwordHash,
		Code:         code,
	})

	if err := email.SendOtpCode(h.AppConfig, form.Email, code, h.AppConfig.OtpTTLMinutes); err != nil {
		slog.Error("Не удалось отправить код подтверждения", "email", form.Email, "error", err)
		h.SessionManager.Put(r.Context(), "flash_error", "Не удалось отправить код подтверждения. Попробуйте позже.")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	slog.Info("Код подтверждения регистрации отправлен", "email", form.Email)
	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "Подтверждение email"
	data.OtpTicket = ticket
	data.FlashSuccess = fmt.Sprintf("Код подтверждения отправлен на вашу почту. Он действителен %d минут.", h.AppConfig.OtpTTLMinutes)
	h.AppHandlers.RenderPage(w, r, "register_verify.html", data)
}

// RegisterVerifyHandler — второй шаг: проверка кода и создание аккаунта.
func (h *AuthHandlers) RegisterVerifyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Метод не поддерживается", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	form := models.OtpVerifyForm{
		Ticket: r.PostForm.Get("ticket"),
		Otp:    r.PostForm.Get("otp"),
	}

	validationErrors := validation.ValidateStruct(form)
	if len(validationErrors) > 0 {
		data := h.AppHandlers.NewPageData(r)
		data.PageTitle = "Подтверждение email"
		data.OtpTicket = form.Ticket
		data.Errors = validationErrors
		h.AppHandlers.RenderPage(w, r, "register_verify.html", data)
		return
	}

	pending, err := h.OtpStore.Consume(form.Ticket, form.Otp)
	if err != nil {
		slog.Warn("Неуспешная проверка кода подтверждения", "ticket", form.Ticket, "error", err)
		if errors.Is(err, otp.ErrCodeMismatch) {
			data := h.AppHandlers.NewPageData(r)
			data.PageTitle = "Подтверждение email"
			data.OtpTicket = form.Ticket
			data.FlashError = err.Error()
			h.AppHandlers.RenderPage(w, r, "register_verify.html", data)
			return
		}
		h.SessionManager.Put(r.Context(), "flash_error", err.Error())
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	user := &models.User{
		Username:     pending.Username,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	userID, err := h.Users.Create(r.Context(), user)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateUser) {
			h.SessionManager.Put(r.Context(), "flash_error", "Пользователь с таким email или именем уже существует.")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		slog.Error("Ошибка создания пользователя после подтверждения OTP", "email", pending.Email, "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	if err := h.SessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("Ошибка обновления токена сессии после регистрации", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}
	h.SessionManager.Put(r.Context(), middleware.SessionKeyUserID, userID)
	h.SessionManager.Put(r.Context(), middleware.SessionKeyIsVip, false)

	slog.Info("Пользователь успешно зарегистрирован", "userID", userID, "email", pending.Email)
	h.SessionManager.Put(r.Context(), "flash_success", "Регистрация завершена. Добро пожаловать!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandlers) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	data := h.AppHandlers.NewPageData(r)
	data.PageTitle = "Вход"
	data.Form = models.LoginForm{}
	h.AppHandlers.RenderPage(w, r, "login.html", data)
}

func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Метод не поддерживается", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}

	form := models.LoginForm{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}

	renderFailure := func(message string) {
		data := h.AppHandlers.NewPageData(r)
		data.PageTitle = "Вход"
		data.Form = form
		data.FlashError = message
		h.AppHandlers.RenderPage(w, r, "login.html", data)
	}

	if validationErrors := validation.ValidateStruct(form); len(validationErrors) > 0 {
		renderFailure("Введите email и пароль.")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), form.Email)
	if err != nil {
		slog.Error("Ошибка поиска пользователя при входе", "email", form.Email, "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}
	// Одинаковое сообщение для несуществующего email и неверного пароля.
	if user == nil || !auth.CheckPasswordHash(form.Password, user.PasswordHash) {
		slog.Warn("Неуспешная попытка входа", "email", form.Email)
		renderFailure("Неверный email или пароль.")
		return
	}
	if !user.IsActive {
		renderFailure("Аккаунт заблокирован. Обратитесь в поддержку.")
		return
	}

	if err := h.SessionManager.RenewToken(r.Context()); err != nil {
		slog.Error("Ошибка обновления токена сессии при входе", "error", err)
		http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
		return
	}
	h.SessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)
	h.SessionManager.Put(r.Context(), middleware.SessionKeyIsVip, user.IsVip)

	slog.Info("Пользователь вошёл в систему", "userID", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Метод не поддерживается", http.StatusMethodNotAllowed)
		return
	}

	if err := h.SessionManager.Destroy(r.Context()); err != nil {
		slog.Error("Ошибка уничтожения сессии при выходе", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
