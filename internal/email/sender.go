// internal/email/sender.go
package email

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"muzplay.kz/internal/config"
)

// SendEmail отправляет простое текстовое письмо.
// Без настроенного SMTP в development выполняется псевдо-отправка в лог.
func SendEmail(appCfg *config.Config, to, subject, body string) error {
	if appCfg.Email.SMTPhost == "" || appCfg.Email.Sender == "" {
		slog.Warn("SMTP хост или отправитель не настроены. Псевдо-отправка email.", "to", to, "subject", subject)
		slog.Debug("Тело письма (для псевдо-отправки)", "body", body)
		if appCfg.AppEnv != "development" {
			return fmt.Errorf("SMTP хост или отправитель не настроены для отправки email")
		}
		return nil
	}

	auth := smtp.PlainAuth("", appCfg.Email.SMTPuser, appCfg.Email.SMTPpassword, appCfg.Email.SMTPhost)
	addr := fmt.Sprintf("%s:%d", appCfg.Email.SMTPhost, appCfg.Email.SMTPport)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", appCfg.Email.Sender))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, appCfg.Email.Sender, []string{to}, []byte(msg.String())); err != nil {
		slog.Error("Ошибка отправки email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("не удалось отправить email: %w", err)
	}
	slog.Info("Email успешно отправлен", "to", to, "subject", subject)
	return nil
}

// SendOtpCode отправляет код подтверждения регистрации.
func SendOtpCode(appCfg *config.Config, to, code string, ttlMinutes int) error {
	subject := "Код подтверждения регистрации на " + appCfg.SiteName
	body := fmt.Sprintf("Ваш код подтверждения: %s\r\n\r\nКод действителен %d минут. Если вы не запрашивали регистрацию, просто проигнорируйте это письмо.", code, ttlMinutes)
	return SendEmail(appCfg, to, subject, body)
}
