package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/errors"
	"mfgtrack/internal/infrastructure/database"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
	SELECT o.id, o.order_number, o.product_id, o.customer_id, o.start_date, o.delivery_date,
	       o.actual_delivery_date, o.status, o.amount, o.amount_received, o.notes,
	       o.created_at, o.updated_at, p.name, c.name, COALESCE(f.name, '')
`

const orderJoins = `
	FROM orders o
	JOIN products p ON p.id = o.product_id
	JOIN customers c ON c.id = o.customer_id
	LEFT JOIN product_families f ON f.id = p.family_id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o      domain.Order
		actual sql.NullTime
		status string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.ProductID, &o.CustomerID, &o.StartDate, &o.DeliveryDate,
		&actual, &status, &o.Amount, &o.AmountReceived, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.ProductName, &o.CustomerName, &o.FamilyName)
	if err != nil {
		return o, err
	}
	o.Status = domain.Stage(status)
	o.Amount = o.Amount.Round(2)
	o.AmountReceived = o.AmountReceived.Round(2)
	o.StartDate = domain.Day(o.StartDate)
	o.DeliveryDate = domain.Day(o.DeliveryDate)
	if actual.Valid {
		d := domain.Day(actual.Time)
		o.ActualDeliveryDate = &d
	}
	return o, nil
}

// filterClause builds the WHERE clause shared by the list, the count and the
// export. today decides which orders are delayed.
func filterClause(f dto.OrderFilter, today time.Time) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	if f.Status != "" {
		conds = append(conds, `o.status = ?`)
		args = append(args, string(f.Status))
	}
	if f.CustomerID > 0 {
		conds = append(conds, `o.customer_id = ?`)
		args = append(args, f.CustomerID)
	}
	if f.ProductID > 0 {
		conds = append(conds, `o.product_id = ?`)
		args = append(args, f.ProductID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		term := "%" + strings.ToLower(s) + "%"
		conds = append(conds, `(LOWER(o.order_number) LIKE ? OR LOWER(p.name) LIKE ? OR LOWER(c.name) LIKE ?)`)
		args = append(args, term, term, term)
	}
	if f.StartDate != nil {
		conds = append(conds, `o.start_date >= ?`)
		args = append(args, domain.Day(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, `o.start_date <= ?`)
		args = append(args, domain.Day(*f.EndDate))
	}
	if f.IsDelayed != nil {
		completed := domain.CompletedStages()
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(completed)), ", ")
		if *f.IsDelayed {
			conds = append(conds, `(o.status NOT IN (`+marks+`) AND o.delivery_date < ?)`)
		} else {
			conds = append(conds, `(o.status IN (`+marks+`) OR o.delivery_date >= ?)`)
		}
		for _, st := range completed {
			args = append(args, string(st))
		}
		args = append(args, domain.Day(today))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(f dto.OrderFilter) string {
	dir := "DESC"
	if !f.SortDesc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, o.id %s", f.SortColumn(), dir, dir)
}

// List returns one page of orders matching f and the total number of matches.
func (r *OrderRepository) List(ctx context.Context, f dto.OrderFilter, today time.Time) ([]domain.Order, int, error) {
	where, args := filterClause(f, today)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+orderJoins+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := orderColumns + orderJoins + where + orderBy(f) + ` LIMIT ? OFFSET ?`
	orders, err := r.query(ctx, query, append(args, f.Page.PerPage, f.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAll returns every order matching f, ignoring paging.
func (r *OrderRepository) ListAll(ctx context.Context, f dto.OrderFilter, today time.Time) ([]domain.Order, error) {
	where, args := filterClause(f, today)
	return r.query(ctx, orderColumns+orderJoins+where+orderBy(f), args...)
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orders: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return findByID(ctx, r.db, id)
}

// FindByIDTx reads the order through tx, seeing the transaction's own writes.
func (r *OrderRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	return findByID(ctx, tx, id)
}

func findByID(ctx context.Context, q rowQuerier, id uint) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, orderColumns+orderJoins+` WHERE o.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}
	return &o, nil
}

// LastOrderNumber returns the highest order number starting with prefix, or
// "" when there is none.
func (r *OrderRepository) LastOrderNumber(ctx context.Context, tx *sql.Tx, prefix string) (string, error) {
	var last string
	err := tx.QueryRowContext(ctx,
		`SELECT order_number FROM orders WHERE order_number LIKE ? ORDER BY order_number DESC LIMIT 1`,
		prefix+"%",
	).Scan(&last)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying last order number: %w", err)
	}
	return last, nil
}

func (r *OrderRepository) Insert(ctx context.Context, tx *sql.Tx, o domain.Order) (uint, error) {
	query := `
		INSERT INTO orders (order_number, product_id, customer_id, start_date, delivery_date, actual_delivery_date,
		                    status, amount, amount_received, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query, o.OrderNumber, o.ProductID, o.CustomerID, o.StartDate, o.DeliveryDate,
		nullableDate(o.ActualDeliveryDate), string(o.Status), o.Amount, o.AmountReceived, o.Notes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, o)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return uint(id), nil
}

// Update writes every editable column of o.
func (r *OrderRepository) Update(ctx context.Context, tx *sql.Tx, o domain.Order) error {
	query := `
		UPDATE orders
		SET product_id = ?, customer_id = ?, start_date = ?, delivery_date = ?, actual_delivery_date = ?,
		    status = ?, amount = ?, amount_received = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query, o.ProductID, o.CustomerID, o.StartDate, o.DeliveryDate,
		nullableDate(o.ActualDeliveryDate), string(o.Status), o.Amount, o.AmountReceived, o.Notes, o.UpdatedAt, o.ID)
	if err != nil {
		return mapWriteError(err, o)
	}

	return requireAffected(result, o.ID)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id uint, status domain.Stage, actualDelivery *time.Time, at time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, actual_delivery_date = ?, updated_at = ? WHERE id = ?`,
		string(status), nullableDate(actualDelivery), at, id,
	)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return requireAffected(result, id)
}

// Touch bumps updated_at. Run first in a transaction it takes the row's write
// lock, so amounts read afterwards cannot change under the caller.
func (r *OrderRepository) Touch(ctx context.Context, tx *sql.Tx, id uint, at time.Time) error {
	result, err := tx.ExecContext(ctx, `UPDATE orders SET updated_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("locking order: %w", err)
	}

	return requireAffected(result, id)
}

// SetReceived stores the new amount_received. The sum is computed by the
// caller under the row lock; SQLite keeps DECIMAL columns as REAL, so adding
// in SQL would drift.
func (r *OrderRepository) SetReceived(ctx context.Context, tx *sql.Tx, id uint, received decimal.Decimal, at time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET amount_received = ?, updated_at = ? WHERE id = ?`,
		received.StringFixed(2), at, id,
	)
	if err != nil {
		return fmt.Errorf("updating amount received: %w", err)
	}

	return requireAffected(result, id)
}

// Delete removes the order. History and payments go with it through the
// foreign keys.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	return requireAffected(result, id)
}

func mapWriteError(err error, o domain.Order) error {
	if database.IsUniqueViolation(err) {
		return errors.NewConflictError(fmt.Sprintf("order number %q already exists", o.OrderNumber))
	}
	if database.IsForeignKeyViolation(err) {
		return errors.NewNotFoundError(fmt.Sprintf("product %d or customer %d not found", o.ProductID, o.CustomerID))
	}
	return fmt.Errorf("writing order: %w", err)
}

func requireAffected(result sql.Result, id uint) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func nullableDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return domain.Day(*t)
}
