// internal/db/premiums_db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"muzplay.kz/internal/models"
)

type PremiumsDB struct {
	db *sql.DB
}

func NewPremiumsDB(db *sql.DB) *PremiumsDB {
	return &PremiumsDB{db: db}
}

func (pdb *PremiumsDB) GetByID(ctx context.Context, premiumID int64) (*models.Premium, error) {
	query := `SELECT premium_id, name, description, price, duration_days, is_active, created_at
	          FROM premiums WHERE premium_id = ?`
	row := pdb.db.QueryRowContext(ctx, query, premiumID)

	var p models.Premium
	var description sql.NullString
	err := row.Scan(&p.PremiumID, &p.Name, &description, &p.Price, &p.DurationDays, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Тариф не найден
		}
		return nil, fmt.Errorf("ошибка получения тарифа по ID: %w", err)
	}
	p.Description = description.String
	return &p, nil
}

// ListActive возвращает активные тарифы по возрастанию цены —
// витрина показывает только то, что можно купить.
func (pdb *PremiumsDB) ListActive(ctx context.Context) ([]models.Premium, error) {
	query := `SELECT premium_id, name, description, price, duration_days, is_active, created_at
	          FROM premiums WHERE is_active = TRUE ORDER BY price ASC`
	rows, err := pdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка тарифов: %w", err)
	}
	defer rows.Close()

	var premiums []models.Premium
	for rows.Next() {
		var p models.Premium
		var description sql.NullString
		if err := rows.Scan(&p.PremiumID, &p.Name, &description, &p.Price, &p.DurationDays, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования тарифа: %w", err)
		}
		p.Description = description.String
		premiums = append(premiums, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации при получении тарифов: %w", err)
	}
	return premiums, nil
}
