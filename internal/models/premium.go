package models

import "time"

// Premium — платный тариф, открывающий VIP-доступ к каталогу.
type Premium struct {
	PremiumID    int64     `json:"premium_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	DurationDays int       `json:"duration_days"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
