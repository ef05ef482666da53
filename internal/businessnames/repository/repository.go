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
	businessNameNotFoundMsg = "business name not found"

	pgUniqueViolation = "23505"

	defaultUniqueIndex = "one_default_business_name"
)

// Repo implements the business name repository backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new business name repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Create inserts a business name, clearing other default flags first when
// the new record is the default. The clear statement writes every existing
// row, not just the current default, so concurrent default writers contend
// on row locks and serialize. Two concurrent default inserts cannot see each
// other's row at all; the one_default_business_name partial unique index is
// the backstop there.
func (r *Repo) Create(ctx context.Context, b *BusinessName) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if b.IsDefault {
		if _, err := tx.Exec(ctx, `UPDATE business_names SET is_default = false`); err != nil {
			return fmt.Errorf("clear default flags: %w", err)
		}
	}

	query := `
		INSERT INTO business_names (id, name, address, phone, email, gst_number, is_default, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if _, err := tx.Exec(ctx, query,
		b.ID, b.Name, b.Address, b.Phone, b.Email, b.GSTNumber,
		b.IsDefault, b.IsActive, b.CreatedAt, b.UpdatedAt,
	); err != nil {
		if conflict := conflictFromUnique(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert business name: %w", err)
	}

	return tx.Commit(ctx)
}

// Update writes all fields, clearing other default flags in the same
// transaction when the record becomes the default.
func (r *Repo) Update(ctx context.Context, b *BusinessName) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if b.IsDefault {
		// No is_default predicate: a WHERE is_default scan takes its snapshot
		// at statement start and never locks a default committed after it, so
		// two writers could both keep their flag. Writing every other row
		// makes the transactions queue on row locks instead.
		if _, err := tx.Exec(ctx, `UPDATE business_names SET is_default = false WHERE id <> $1`, b.ID); err != nil {
			return fmt.Errorf("clear default flags: %w", err)
		}
	}

	query := `
		UPDATE business_names SET
			name = $2, address = $3, phone = $4, email = $5, gst_number = $6,
			is_default = $7, is_active = $8, updated_at = $9
		WHERE id = $1`

	result, err := tx.Exec(ctx, query,
		b.ID, b.Name, b.Address, b.Phone, b.Email, b.GSTNumber,
		b.IsDefault, b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		if conflict := conflictFromUnique(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update business name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(businessNameNotFoundMsg)
	}

	return tx.Commit(ctx)
}

// SetDefault makes the target the sole default: unset-then-set in one
// transaction. The clear statement writes every other row so concurrent
// SetDefault calls queue on row locks rather than each keeping its own
// flag; the partial unique index catches any interleaving the locks miss.
func (r *Repo) SetDefault(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE business_names SET is_default = false WHERE id <> $1`, id); err != nil {
		return fmt.Errorf("clear default flags: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE business_names SET is_default = true, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		if conflict := conflictFromUnique(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("set default flag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(businessNameNotFoundMsg)
	}

	return tx.Commit(ctx)
}

// Delete removes an unreferenced business name. A referenced one is
// deactivated instead; the default flag is cleared in the same UPDATE so an
// inactive record can never remain the implicit default.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var referenced int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotations WHERE business_name_id = $1`, id,
	).Scan(&referenced); err != nil {
		return false, fmt.Errorf("count references: %w", err)
	}

	if referenced > 0 {
		result, err := tx.Exec(ctx,
			`UPDATE business_names SET is_active = false, is_default = false, updated_at = now() WHERE id = $1`, id)
		if err != nil {
			return false, fmt.Errorf("deactivate business name: %w", err)
		}
		if result.RowsAffected() == 0 {
			return false, apperr.NotFound(businessNameNotFoundMsg)
		}
		return true, tx.Commit(ctx)
	}

	result, err := tx.Exec(ctx, `DELETE FROM business_names WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete business name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, apperr.NotFound(businessNameNotFoundMsg)
	}

	return false, tx.Commit(ctx)
}

// GetByID retrieves a business name by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*BusinessName, error) {
	query := `
		SELECT id, name, address, phone, email, gst_number, is_default, is_active, created_at, updated_at
		FROM business_names WHERE id = $1`

	var b BusinessName
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.GSTNumber,
		&b.IsDefault, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(businessNameNotFoundMsg)
		}
		return nil, fmt.Errorf("get business name: %w", err)
	}
	return &b, nil
}

// List retrieves all business names, default first.
func (r *Repo) List(ctx context.Context) ([]BusinessName, error) {
	query := `
		SELECT id, name, address, phone, email, gst_number, is_default, is_active, created_at, updated_at
		FROM business_names
		ORDER BY is_default DESC, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list business names: %w", err)
	}
	defer rows.Close()

	var items []BusinessName
	for rows.Next() {
		var b BusinessName
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.GSTNumber,
			&b.IsDefault, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan business name: %w", err)
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate business names: %w", err)
	}
	return items, nil
}

// conflictFromUnique maps a unique violation to the matching Conflict, or
// returns nil for any other error. The one_default_business_name partial
// index fires when two transactions race to install a default neither could
// see; retrying the request resolves it.
func conflictFromUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}
	if pgErr.ConstraintName == defaultUniqueIndex {
		return apperr.Conflict("the default business name changed concurrently, please retry")
	}
	return apperr.Conflict("a business name with this name already exists")
}
