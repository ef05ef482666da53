package repository

import (
	"context"
	"errors"
	"fmt"

	"tradequote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerNotFoundMsg = "customer not found"

// Repo implements the customer repository backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new customer repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a customer.
func (r *Repo) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, address, gst_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.GSTNumber, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// Update writes all customer fields.
func (r *Repo) Update(ctx context.Context, c *Customer) error {
	query := `
		UPDATE customers SET
			name = $2, email = $3, phone = $4, address = $5, gst_number = $6, updated_at = $7
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.GSTNumber, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMsg)
	}
	return nil
}

// Delete removes a customer that owns no quotations.
// The ownership check and the delete run in one transaction so a quotation
// created concurrently cannot slip between check and delete.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var owned int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotations WHERE customer_id = $1`, id,
	).Scan(&owned); err != nil {
		return fmt.Errorf("count owned quotations: %w", err)
	}
	if owned > 0 {
		return apperr.Conflict("customer has quotations and cannot be deleted")
	}

	result, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(customerNotFoundMsg)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a customer by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	query := `
		SELECT id, name, email, phone, address, gst_number, created_at, updated_at
		FROM customers WHERE id = $1`

	var c Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.GSTNumber, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(customerNotFoundMsg)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// List retrieves customers with search and pagination.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Customer, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	baseQuery := `
		FROM customers
		WHERE ($1::text IS NULL OR name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1)
	`
	args := []interface{}{searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	selectQuery := `
		SELECT id, name, email, phone, address, gst_number, created_at, updated_at
		` + baseQuery + `
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`

	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var items []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.GSTNumber, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate customers: %w", err)
	}

	return items, total, nil
}
