package repository

import (
	"context"
	"errors"
	"fmt"

	"tradequote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	productNotFoundMsg  = "product not found"
	categoryNotFoundMsg = "category not found"

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Repo implements the catalog repository backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateProduct inserts a product. A duplicate SKU is a Conflict.
func (r *Repo) CreateProduct(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (id, category_id, name, sku, description, unit, unit_price, gst_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := r.pool.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.SKU, p.Description, p.Unit,
		p.UnitPrice, p.GSTRate, p.IsActive, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperr.Conflict("a product with this SKU already exists")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// UpdateProduct updates a product in place.
func (r *Repo) UpdateProduct(ctx context.Context, p *Product) error {
	query := `
		UPDATE products SET
			category_id = $2, name = $3, sku = $4, description = $5, unit = $6,
			unit_price = $7, gst_rate = $8, is_active = $9, updated_at = $10
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.SKU, p.Description, p.Unit,
		p.UnitPrice, p.GSTRate, p.IsActive, p.UpdatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperr.Conflict("a product with this SKU already exists")
		}
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMsg)
	}
	return nil
}

// DeleteProduct removes a product. Products referenced by quotation items
// cannot be removed; deactivate them instead.
func (r *Repo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return apperr.Conflict("product is referenced by quotations; deactivate it instead")
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(productNotFoundMsg)
	}
	return nil
}

// GetProductByID retrieves a product by ID.
func (r *Repo) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, category_id, name, sku, description, unit, unit_price, gst_rate, is_active, created_at, updated_at
		FROM products WHERE id = $1`

	var p Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CategoryID, &p.Name, &p.SKU, &p.Description, &p.Unit,
		&p.UnitPrice, &p.GSTRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(productNotFoundMsg)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ListProducts retrieves products with filtering and pagination.
func (r *Repo) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var categoryParam interface{}
	if params.CategoryID != nil {
		categoryParam = *params.CategoryID
	}

	baseQuery := `
		FROM products
		WHERE ($1::text IS NULL OR name ILIKE $1 OR sku ILIKE $1)
			AND ($2::uuid IS NULL OR category_id = $2)
			AND (NOT $3::bool OR is_active)
	`
	args := []interface{}{searchParam, categoryParam, params.ActiveOnly}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	selectQuery := `
		SELECT id, category_id, name, sku, description, unit, unit_price, gst_rate, is_active, created_at, updated_at
		` + baseQuery + `
		ORDER BY name ASC
		LIMIT $4 OFFSET $5`

	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.CategoryID, &p.Name, &p.SKU, &p.Description, &p.Unit,
			&p.UnitPrice, &p.GSTRate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate products: %w", err)
	}

	return items, total, nil
}

// CreateCategory inserts a category. A duplicate name is a Conflict.
func (r *Repo) CreateCategory(ctx context.Context, c *Category) error {
	query := `INSERT INTO product_categories (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.CreatedAt); err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperr.Conflict("a category with this name already exists")
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category; products keep a NULL category afterwards.
func (r *Repo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM product_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(categoryNotFoundMsg)
	}
	return nil
}

// ListCategories retrieves all categories ordered by name.
func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM product_categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return items, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
