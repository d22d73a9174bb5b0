package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"mfgtrack/internal/domain"
	"mfgtrack/internal/dto"
	"mfgtrack/internal/errors"
	"mfgtrack/internal/infrastructure/database"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.name, p.code, p.description, p.family_id, COALESCE(f.name, ''), p.tags,
	       p.base_price, p.production_time_days, p.is_active, p.created_at
	FROM products p
	LEFT JOIN product_families f ON f.id = p.family_id
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		code     sql.NullString
		familyID sql.NullInt64
		tags     string
	)
	err := row.Scan(&p.ID, &p.Name, &code, &p.Description, &familyID, &p.FamilyName, &tags,
		&p.BasePrice, &p.ProductionTimeDays, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if code.Valid {
		p.Code = &code.String
	}
	if familyID.Valid {
		id := int(familyID.Int64)
		p.FamilyID = &id
	}
	p.Tags = domain.SplitTags(tags)
	p.BasePrice = p.BasePrice.Round(2)
	return p, nil
}

type ListFilter struct {
	Search     string
	FamilyID   int
	ActiveOnly bool
	Page       dto.Page
}

func (r *ProductRepository) List(ctx context.Context, f ListFilter) ([]domain.Product, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		term := "%" + strings.ToLower(s) + "%"
		conds = append(conds, `(LOWER(p.name) LIKE ? OR LOWER(COALESCE(p.code, '')) LIKE ? OR LOWER(p.tags) LIKE ?)`)
		args = append(args, term, term, term)
	}
	if f.FamilyID > 0 {
		conds = append(conds, `p.family_id = ?`)
		args = append(args, f.FamilyID)
	}
	if f.ActiveOnly {
		conds = append(conds, `p.is_active = ?`)
		args = append(args, true)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := productSelect + where + ` ORDER BY p.name ASC, p.id ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Page.PerPage, f.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) Insert(ctx context.Context, p domain.Product) (int, error) {
	query := `
		INSERT INTO products (name, code, description, family_id, tags, base_price, production_time_days, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, p.Name, nullableString(p.Code), p.Description, nullableInt(p.FamilyID),
		domain.JoinTags(p.Tags), p.BasePrice, p.ProductionTimeDays, p.IsActive, p.CreatedAt)
	if err != nil {
		return 0, mapWriteError(err, p)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return int(id), nil
}

func (r *ProductRepository) Update(ctx context.Context, p domain.Product) error {
	query := `
		UPDATE products
		SET name = ?, code = ?, description = ?, family_id = ?, tags = ?, base_price = ?,
		    production_time_days = ?, is_active = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, p.Name, nullableString(p.Code), p.Description, nullableInt(p.FamilyID),
		domain.JoinTags(p.Tags), p.BasePrice, p.ProductionTimeDays, p.IsActive, p.ID)
	if err != nil {
		return mapWriteError(err, p)
	}

	return requireAffected(result, "product", p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if database.IsForeignKeyViolation(err) {
		return errors.NewConflictError(fmt.Sprintf("product %d is used by orders and cannot be deleted", id))
	}
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return requireAffected(result, "product", id)
}

func (r *ProductRepository) CountOrders(ctx context.Context, productID int) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE product_id = ?`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting product orders: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) ListFamilies(ctx context.Context) ([]domain.ProductFamily, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM product_families ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying product families: %w", err)
	}
	defer rows.Close()

	families := []domain.ProductFamily{}
	for rows.Next() {
		var f domain.ProductFamily
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning product family: %w", err)
		}
		families = append(families, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product families: %w", err)
	}
	return families, nil
}

func (r *ProductRepository) FindFamilyByID(ctx context.Context, id int) (*domain.ProductFamily, error) {
	var f domain.ProductFamily
	err := r.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM product_families WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Description, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product family with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product family: %w", err)
	}
	return &f, nil
}

func (r *ProductRepository) InsertFamily(ctx context.Context, f domain.ProductFamily) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO product_families (name, description, created_at) VALUES (?, ?, ?)`,
		f.Name, f.Description, f.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return 0, errors.NewConflictError(fmt.Sprintf("product family %q already exists", f.Name))
	}
	if err != nil {
		return 0, fmt.Errorf("inserting product family: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return int(id), nil
}

func mapWriteError(err error, p domain.Product) error {
	if database.IsUniqueViolation(err) && p.Code != nil {
		return errors.NewConflictError(fmt.Sprintf("product code %q already exists", *p.Code))
	}
	if database.IsForeignKeyViolation(err) && p.FamilyID != nil {
		return errors.NewNotFoundError(fmt.Sprintf("product family with id %d not found", *p.FamilyID))
	}
	return fmt.Errorf("writing product: %w", err)
}

func requireAffected(result sql.Result, what string, id int) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("%s with id %d not found", what, id))
	}
	return nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
