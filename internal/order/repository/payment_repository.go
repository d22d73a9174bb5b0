package repository

import (
	"context"
	"database/sql"
	"fmt"

	"mfgtrack/internal/domain"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Insert(ctx context.Context, tx *sql.Tx, p domain.Payment) (uint, error) {
	query := `INSERT INTO order_payments (order_id, amount, received_on, reference, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, p.OrderID, p.Amount, domain.Day(p.ReceivedOn), p.Reference, p.Notes, p.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting payment: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// ListByOrder returns the order's payments, oldest first.
func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID uint) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, amount, received_on, reference, notes, created_at
		FROM order_payments
		WHERE order_id = ?
		ORDER BY received_on ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.ReceivedOn, &p.Reference, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		p.Amount = p.Amount.Round(2)
		p.ReceivedOn = domain.Day(p.ReceivedOn)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return payments, nil
}
