// internal/db/users_db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"muzplay.kz/internal/models"

	"github.com/go-sql-driver/mysql"
)

var ErrDuplicateUser = errors.New("пользователь с таким email или именем уже существует")

type UsersDB struct {
	db *sql.DB
}

func NewUsersDB(db *sql.DB) *UsersDB {
	return &UsersDB{db: db}
}

func (udb *UsersDB) Create(ctx context.Context, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, role, is_vip, is_active, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := udb.db.ExecContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.Role, user.IsVip, user.IsActive, now, now,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, ErrDuplicateUser
		}
		slog.Error("Ошибка создания пользователя", "email", user.Email, "error", err)
		return 0, fmt.Errorf("не удалось создать пользователя: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("не удалось получить ID созданного пользователя: %w", err)
	}
	user.ID = id
	return id, nil
}

func (udb *UsersDB) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, role, is_vip, is_active, created_at, updated_at
	          FROM users WHERE id = ?`
	return udb.scanOne(udb.db.QueryRowContext(ctx, query, id))
}

func (udb *UsersDB) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, username, email, password_hash, role, is_vip, is_active, created_at, updated_at
	          FROM users WHERE email = ?`
	return udb.scanOne(udb.db.QueryRowContext(ctx, query, email))
}

// SetVip переключает VIP-флаг пользователя. Вызывается только из
// биллинга после успешного платежа.
func (udb *UsersDB) SetVip(ctx context.Context, userID int64, vip bool) error {
	query := `UPDATE users SET is_vip = ?, updated_at = ? WHERE id = ?`
	_, err := udb.db.ExecContext(ctx, query, vip, time.Now(), userID)
	if err != nil {
		slog.Error("Ошибка обновления VIP-статуса пользователя", "userID", userID, "vip", vip, "error", err)
		return fmt.Errorf("не удалось обновить VIP-статус: %w", err)
	}
	return nil
}

func (udb *UsersDB) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsVip, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Пользователь не найден, это не всегда ошибка
		}
		return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
	}
	return &u, nil
}
