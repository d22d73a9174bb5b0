package repository

import (
	"context"
	"database/sql"
	"fmt"

	"mfgtrack/internal/domain"
)

type StatusHistoryRepository struct {
	db *sql.DB
}

func NewStatusHistoryRepository(db *sql.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

func (r *StatusHistoryRepository) Insert(ctx context.Context, tx *sql.Tx, entry domain.StatusHistoryEntry) (uint, error) {
	query := `INSERT INTO order_status_history (order_id, old_status, new_status, notes, changed_at) VALUES (?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query, entry.OrderID, entry.OldStatus, entry.NewStatus, entry.Notes, entry.ChangedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting status history: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

// ListByOrder returns the order's history, oldest first.
func (r *StatusHistoryRepository) ListByOrder(ctx context.Context, orderID uint) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, old_status, new_status, notes, changed_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY changed_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying status history: %w", err)
	}
	defer rows.Close()

	entries := []domain.StatusHistoryEntry{}
	for rows.Next() {
		var e domain.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.OldStatus, &e.NewStatus, &e.Notes, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("scanning status history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status history: %w", err)
	}

	return entries, nil
}
