// internal/db/payments_db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"muzplay.kz/internal/models"
)

type PaymentsDB struct {
	db *sql.DB
}

func NewPaymentsDB(db *sql.DB) *PaymentsDB {
	return &PaymentsDB{db: db}
}

// Create сохраняет новый платёж в статусе Pending и возвращает присвоенный ID.
// Вставка выполняется до построения ссылки на шлюз: шлюз вернёт этот ID
// в vnp_TxnRef, и запись обязана существовать к моменту callback.
func (pdb *PaymentsDB) Create(ctx context.Context, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (user_id, premium_id, amount, method, status, date, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	if payment.Date.IsZero() {
		payment.Date = now
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusPending
	}
	res, err := pdb.db.ExecContext(ctx, query,
		payment.UserID, payment.PremiumID, payment.Amount,
		payment.Method, payment.Status, payment.Date, now,
	)
	if err != nil {
		slog.Error("Ошибка создания записи о платеже", "userID", payment.UserID, "premiumID", payment.PremiumID, "error", err)
		return 0, fmt.Errorf("не удалось сохранить платёж: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("не удалось получить ID созданного платежа: %w", err)
	}
	payment.PaymentID = id
	return id, nil
}

// GetByTxnRef находит платёж по внешнему референсу (строковому PaymentID).
// Сравнение строгое: референс обязан в точности совпадать со строковой
// формой ID, поэтому "007" не находит платёж 7.
func (pdb *PaymentsDB) GetByTxnRef(ctx context.Context, txnRef string) (*models.Payment, error) {
	id, err := strconv.ParseInt(txnRef, 10, 64)
	if err != nil || strconv.FormatInt(id, 10) != txnRef {
		return nil, nil
	}

	query := `SELECT payment_id, user_id, premium_id, amount, method, status, transaction_id, response_code, date, updated_at
	          FROM payments WHERE payment_id = ?`
	row := pdb.db.QueryRowContext(ctx, query, id)

	var p models.Payment
	var txnID, respCode sql.NullString
	err = row.Scan(
		&p.PaymentID, &p.UserID, &p.PremiumID, &p.Amount, &p.Method,
		&p.Status, &txnID, &respCode, &p.Date, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Платёж не найден — ожидаемый случай для callback
		}
		slog.Error("Ошибка получения платежа по референсу", "txnRef", txnRef, "error", err)
		return nil, fmt.Errorf("ошибка получения платежа: %w", err)
	}
	p.TransactionID = txnID.String
	p.ResponseCode = respCode.String
	return &p, nil
}

// MarkTerminal переводит платёж из Pending в конечный статус.
// Условие status = 'Pending' гарантирует, что при конкурирующих callback
// запись изменит ровно один из них; возвращает true, если запись выиграл
// именно этот вызов.
func (pdb *PaymentsDB) MarkTerminal(ctx context.Context, paymentID int64, status models.PaymentStatus, transactionID, responseCode string) (bool, error) {
	query := `UPDATE payments
	          SET status = ?, transaction_id = ?, response_code = ?, updated_at = ?
	          WHERE payment_id = ? AND status = ?`
	res, err := pdb.db.ExecContext(ctx, query,
		status,
		sql.NullString{String: transactionID, Valid: transactionID != ""},
		sql.NullString{String: responseCode, Valid: responseCode != ""},
		time.Now(), paymentID, models.PaymentStatusPending,
	)
	if err != nil {
		slog.Error("Ошибка обновления статуса платежа", "paymentID", paymentID, "newStatus", status, "error", err)
		return false, fmt.Errorf("не удалось обновить статус платежа: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("не удалось получить число изменённых строк: %w", err)
	}
	return affected == 1, nil
}

// ListByUser возвращает платежи пользователя, новые сверху. Для истории в профиле.
func (pdb *PaymentsDB) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Payment, error) {
	query := `SELECT payment_id, user_id, premium_id, amount, method, status, transaction_id, response_code, date, updated_at
	          FROM payments WHERE user_id = ? ORDER BY date DESC LIMIT ?`
	rows, err := pdb.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения платежей пользователя: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var txnID, respCode sql.NullString
		if err := rows.Scan(&p.PaymentID, &p.UserID, &p.PremiumID, &p.Amount, &p.Method, &p.Status, &txnID, &respCode, &p.Date, &p.UpdatedAt); err != nil {
			slog.Error("Ошибка сканирования платежа", "userID", userID, "error", err)
			continue
		}
		p.TransactionID = txnID.String
		p.ResponseCode = respCode.String
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации при получении платежей: %w", err)
	}
	return payments, nil
}
