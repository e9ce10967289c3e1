package otp

import (
	"errors"
	"testing"
	"time"
)

func TestConsumeIsSingleUse(t *testing.T) {
	store := NewStore(5 * time.Minute)
	ticket := store.Put(PendingRegistration{
		Username:     "ivan",
		Email:        "ivan@example.com",
		PasswordHash: "$2a$10$hash",
		Code:         "123456",
	})

	reg, err := store.Consume(ticket, "123456")
	if err != nil {
		t.Fatalf("Consume() error: %v", err)
	}
	if reg.Email != "ivan@example.com" || reg.Username != "ivan" {
		t.Errorf("Consume() вернул не те данные регистрации: %+v", reg)
	}

	if _, err := store.Consume(ticket, "123456"); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Consume() err = %v, want ErrNotFound", err)
	}
}

func TestConsumeKeepsEntryOnCodeMismatch(t *testing.T) {
	store := NewStore(5 * time.Minute)
	ticket := store.Put(PendingRegistration{Email: "ivan@example.com", Code: "123456"})

	if _, err := store.Consume(ticket, "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("Consume() с неверным кодом err = %v, want ErrCodeMismatch", err)
	}

	// Опечатка не сжигает код: правильная попытка всё ещё проходит.
	if _, err := store.Consume(ticket, "123456"); err != nil {
		t.Errorf("Consume() после опечатки err = %v, want nil", err)
	}
}

func TestConsumeExpired(t *testing.T) {
	store := NewStore(5 * time.Minute)
	current := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	ticket := store.Put(PendingRegistration{Email: "ivan@example.com", Code: "123456"})

	current = current.Add(5*time.Minute + time.Second)
	if _, err := store.Consume(ticket, "123456"); !errors.Is(err, ErrExpired) {
		t.Fatalf("Consume() просроченного кода err = %v, want ErrExpired", err)
	}

	// Просроченная запись удаляется, дальше это уже не найденный тикет.
	if _, err := store.Consume(ticket, "123456"); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Consume() err = %v, want ErrNotFound", err)
	}
}

func TestConsumeUnknownTicket(t *testing.T) {
	store := NewStore(5 * time.Minute)
	if _, err := store.Consume("no-such-ticket", "123456"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Consume() err = %v, want ErrNotFound", err)
	}
}

func TestCleanupRemovesOnlyExpired(t *testing.T) {
	store := NewStore(5 * time.Minute)
	current := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	oldTicket := store.Put(PendingRegistration{Email: "old@example.com", Code: "111111"})
	current = current.Add(4 * time.Minute)
	freshTicket := store.Put(PendingRegistration{Email: "fresh@example.com", Code: "222222"})

	current = current.Add(2 * time.Minute)
	store.cleanup()

	if _, err := store.Consume(oldTicket, "111111"); !errors.Is(err, ErrNotFound) {
		t.Errorf("просроченная запись пережила cleanup: err = %v", err)
	}
	if _, err := store.Consume(freshTicket, "222222"); err != nil {
		t.Errorf("живая запись не должна удаляться cleanup: err = %v", err)
	}
}

func TestGenerateCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode() error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("GenerateCode() = %q, ожидалось 6 символов", code)
		}
		for _, ch := range code {
			if ch < '0' || ch > '9' {
				t.Fatalf("GenerateCode() = %q, ожидались только цифры", code)
			}
		}
	}
}
