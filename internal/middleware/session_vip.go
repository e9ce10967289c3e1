// internal/middleware/session_vip.go
package middleware

import (
	"context"

	"github.com/alexedwards/scs/v2"
)

// SessionVip переписывает VIP-признак в живой сессии, не требуя
// повторного входа.
type SessionVip struct {
	sessionManager *scs.SessionManager
}

func NewSessionVip(sm *scs.SessionManager) *SessionVip {
	return &SessionVip{sessionManager: sm}
}

// RefreshVipClaim заменяет (или добавляет) VIP-признак в данных сессии и
// перевыпускает токен. Сессия записывается заново как новый снимок, а не
// правится разделяемый объект по месту.
func (s *SessionVip) RefreshVipClaim(ctx context.Context, vip bool) error {
	s.sessionManager.Put(ctx, SessionKeyIsVip, vip)
	return s.sessionManager.RenewToken(ctx)
}

// CurrentUserID возвращает пользователя текущей сессии, 0 — если сессии нет.
func (s *SessionVip) CurrentUserID(ctx context.Context) int64 {
	return s.sessionManager.GetInt64(ctx, SessionKeyUserID)
}
