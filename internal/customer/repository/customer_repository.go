package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/errors"
	"mfgtrack/internal/infrastructure/database"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, name, company, contact_person, email, phone, address, is_active, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Company, &c.ContactPerson, &c.Email, &c.Phone, &c.Address, &c.IsActive, &c.CreatedAt)
	return c, err
}

func (r *CustomerRepository) List(ctx context.Context, search string, page dto.Page) ([]domain.Customer, int, error) {
	where := ""
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		where = ` WHERE LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ? OR LOWER(contact_person) LIKE ?`
		args = append(args, term, term, term, term)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	query := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, page.PerPage, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating customers: %w", err)
	}

	return customers, total, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id int) (*domain.Customer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)

	c, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}

	return &c, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c domain.Customer) (int, error) {
	query := `
		INSERT INTO customers (name, company, contact_person, email, phone, address, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.Company, c.ContactPerson, c.Email, c.Phone, c.Address, c.IsActive, c.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return int(id), nil
}

func (r *CustomerRepository) Update(ctx context.Context, c domain.Customer) error {
	query := `
		UPDATE customers
		SET name = ?, company = ?, contact_person = ?, email = ?, phone = ?, address = ?, is_active = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.Company, c.ContactPerson, c.Email, c.Phone, c.Address, c.IsActive, c.ID)
	if err != nil {
		return fmt.Errorf("updating customer: %w", err)
	}

	return requireAffected(result, c.ID)
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if database.IsForeignKeyViolation(err) {
		return errors.NewConflictError(fmt.Sprintf("customer %d has orders and cannot be deleted", id))
	}
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	return requireAffected(result, id)
}

// OrderAmounts returns amount and amount_received of every order placed by
// the customer.
func (r *CustomerRepository) OrderAmounts(ctx context.Context, customerID int) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT amount, amount_received FROM orders WHERE customer_id = ?`, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying customer orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var amount, received decimal.Decimal
		if err := rows.Scan(&amount, &received); err != nil {
			return nil, fmt.Errorf("scanning customer order: %w", err)
		}
		orders = append(orders, domain.Order{CustomerID: customerID, Amount: amount.Round(2), AmountReceived: received.Round(2)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer orders: %w", err)
	}

	return orders, nil
}

func requireAffected(result sql.Result, id int) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	return nil
}
