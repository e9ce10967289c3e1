// internal/otp/store.go
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("код подтверждения не найден, запросите новый")
	ErrExpired      = errors.New("срок действия кода подтверждения истёк")
	ErrCodeMismatch = errors.New("неверный код подтверждения")
)

// PendingRegistration — данные регистрации, ожидающие подтверждения кодом.
// Пароль хранится только в виде хэша.
type PendingRegistration struct {
	Username     string
	Email        string
	PasswordHash string
	Code         string
	ExpiresAt    time.Time
}

// Store — внедряемое хранилище одноразовых кодов с явным TTL.
// Передаётся зависимостью, а не глобальным синглтоном: при
// горизонтальном масштабировании его можно заменить внешним, не трогая
// обработчики.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]PendingRegistration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]PendingRegistration),
		now:     time.Now,
	}
}

// Put сохраняет ожидающую регистрацию и возвращает тикет, который
// связывает форму подтверждения с выданным кодом.
func (s *Store) Put(reg PendingRegistration) string {
	ticket := uuid.NewString()
	reg.ExpiresAt = s.now().Add(s.ttl)

	s.mu.Lock()
	s.entries[ticket] = reg
	s.mu.Unlock()
	return ticket
}

// Consume проверяет код по тикету. Успешная проверка одноразовая: запись
// удаляется. Просроченная запись тоже удаляется; при несовпадении кода
// запись остаётся — пользователь мог опечататься.
func (s *Store) Consume(ticket, code string) (*PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.entries[ticket]
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(reg.ExpiresAt) {
		delete(s.entries, ticket)
		return nil, ErrExpired
	}
	if reg.Code != code {
		return nil, ErrCodeMismatch
	}
	delete(s.entries, ticket)
	return &reg, nil
}

// CleanupLoop периодически убирает просроченные записи. Запускается
// горутиной из main.
func (s *Store) CleanupLoop(interval time.Duration) {
	for {
		time.Sleep(interval)
		s.cleanup()
	}
}

func (s *Store) cleanup() {
	now := s.now()
	s.mu.Lock()
	for ticket, reg := range s.entries {
		if now.After(reg.ExpiresAt) {
			delete(s.entries, ticket)
		}
	}
	s.mu.Unlock()
}

// GenerateCode выдаёт шестизначный код подтверждения.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("не удалось сгенерировать код подтверждения: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
