// internal/handlers/pages.go
package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"muzplay.kz/internal/config"
	"muzplay.kz/internal/middleware"
	"muzplay.kz/internal/models"

	"github.com/alexedwards/scs/v2"
	"github.com/justinas/nosurf"
)

type PageData struct {
	SiteName        string
	SiteDescription string
	CurrentYear     int
	BaseURL         string
	CurrentPath     string
	CSRFToken       string
	IsAuthenticated bool
	User            *models.User
	FlashSuccess    string
	FlashError      string
	Errors          url.Values
	Form            interface{}
	PageTitle       string
	Premiums        []models.Premium
	Payments        []models.Payment
	Message         string
	OrderInfo       string
	OtpTicket       string
}

type AppHandlers struct {
	Config         *config.Config
	BaseTmpl       *template.Template
	PagesPath      string
	SessionManager *scs.SessionManager
}

func templatesDir() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("не удалось получить путь к текущему файлу для определения пути к шаблонам")
	}
	projectRoot := filepath.Join(filepath.Dir(currentFilePath), "..", "..")
	return filepath.Join(projectRoot, "templates"), nil
}

func NewAppHandlers(cfg *config.Config, sm *scs.SessionManager) (*AppHandlers, error) {
	tmplDir, err := templatesDir()
	if err != nil {
		return nil, err
	}

	baseFile := filepath.Join(tmplDir, "base.html")
	if _, err := os.Stat(baseFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("базовый шаблон не найден: %s", baseFile)
	}

	funcMap := template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"price":    func(v float64) string { return fmt.Sprintf("%.0f", v) },
	}

	baseTmpl, err := template.New("base.html").Funcs(funcMap).ParseFiles(baseFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга базового шаблона: %w", err)
	}

	return &AppHandlers{
		Config:         cfg,
		BaseTmpl:       baseTmpl,
		PagesPath:      filepath.Join(tmplDir, "pages"),
		SessionManager: sm,
	}, nil
}

func (h *AppHandlers) NewPageData(r *http.Request) *PageData {
	data := &PageData{
		SiteName:        h.Config.SiteName,
		SiteDescription: h.Config.SiteDescription,
		CurrentYear:     h.Config.CurrentYear,
		BaseURL:         h.Config.BaseURL,
		CurrentPath:     r.URL.Path,
		CSRFToken:       nosurf.Token(r),
	}

	if isAuth, ok := r.Context().Value(middleware.IsAuthenticatedContextKey).(bool); ok {
		data.IsAuthenticated = isAuth
	}
	if user, ok := r.Context().Value(middleware.UserContextKey).(*models.User); ok {
		data.User = user
	}

	data.FlashSuccess = h.SessionManager.PopString(r.Context(), "flash_success")
	data.FlashError = h.SessionManager.PopString(r.Context(), "flash_error")
	return data
}

// RenderPage отрисовывает страницу pageName поверх базового шаблона.
func (h *AppHandlers) RenderPage(w http.ResponseWriter, r *http.Request, pageName string, data *PageData) {
	tmpl, err := h.BaseTmpl.Clone()
	if err != nil {
		slog.Error("Ошибка клонирования базового шаблона", "page", pageName, "error", err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	pageFile := filepath.Join(h.PagesPath, pageName)
	tmpl, err = tmpl.ParseFiles(pageFile)
	if err != nil {
		slog.Error("Ошибка парсинга шаблона страницы", "page", pageName, "error", err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	// Сначала рендерим в буфер: полуотданная страница при ошибке хуже 500-й.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		slog.Error("Ошибка выполнения шаблона страницы", "page", pageName, "error", err)
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("Ошибка записи ответа", "page", pageName, "error", err)
	}
}

func (h *AppHandlers) WelcomePageHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := h.NewPageData(r)
	data.PageTitle = "Главная"
	h.RenderPage(w, r, "welcome.html", data)
}
