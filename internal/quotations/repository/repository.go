package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradequote_backend/platform/apperr"
	"tradequote_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	quotationNotFoundMsg = "quotation not found"

	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
)

// Repo implements the quotation store backed by Postgres.
type Repo struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New creates a new quotation repository.
func New(pool *pgxpool.Pool, log *logger.Logger) *Repo {
	return &Repo{pool: pool, log: log}
}

// Compile-time check that Repo implements Store.
var _ Store = (*Repo)(nil)

// Create persists a quotation in one transaction: the customer is resolved,
// a free quotation number is allocated against the same snapshot, and the
// header plus all items are inserted. Any failure rolls the whole write back.
func (r *Repo) Create(ctx context.Context, params CreateParams) (*Aggregate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	customer, err := resolveCustomer(ctx, tx, params.Customer)
	if err != nil {
		return nil, err
	}

	number, lastCandidate, err := allocateNumber(ctx, func(ctx context.Context, candidate string) (bool, error) {
		var taken bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM quotations WHERE quotation_number = $1)`, candidate,
		).Scan(&taken)
		return taken, err
	})
	if err != nil {
		if errors.Is(err, ErrNumberSpaceExhausted) && r.log != nil {
			r.log.SequenceExhausted(maxNumberAttempts, lastCandidate)
		}
		return nil, err
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		INSERT INTO quotations (
			id, quotation_number, customer_id, business_name_id,
			title, description, notes,
			subtotal, tax_rate, tax_amount, total_amount,
			status, valid_until, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		params.ID, number, customer.ID, params.BusinessNameID,
		params.Title, params.Description, params.Notes,
		params.Subtotal, params.TaxRate, params.TaxAmount, params.TotalAmount,
		params.Status, params.ValidUntil, now, now,
	); err != nil {
		if isPgError(err, pgUniqueViolation) {
			// Lost a number race to a concurrent transaction. Rare enough
			// that the caller simply retries the request.
			return nil, apperr.Conflict("quotation number collision, please retry")
		}
		if isPgError(err, pgFKViolation) {
			return nil, apperr.NotFound("referenced business name not found")
		}
		return nil, fmt.Errorf("insert quotation: %w", err)
	}

	if err := insertItems(ctx, tx, params.ID, params.Items, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetByID(ctx, params.ID)
}

// Update replaces a quotation's full state in one transaction. Items are
// deleted and reinserted wholesale; the quotation number and status are
// preserved.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Aggregate, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	customer, err := resolveCustomer(ctx, tx, params.Customer)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := tx.Exec(ctx, `
		UPDATE quotations SET
			customer_id = $2, business_name_id = $3,
			title = $4, description = $5, notes = $6,
			subtotal = $7, tax_rate = $8, tax_amount = $9, total_amount = $10,
			valid_until = $11, updated_at = $12
		WHERE id = $1`,
		id, customer.ID, params.BusinessNameID,
		params.Title, params.Description, params.Notes,
		params.Subtotal, params.TaxRate, params.TaxAmount, params.TotalAmount,
		params.ValidUntil, now,
	)
	if err != nil {
		if isPgError(err, pgFKViolation) {
			return nil, apperr.NotFound("referenced business name not found")
		}
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, apperr.NotFound(quotationNotFoundMsg)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete quotation items: %w", err)
	}
	if err := insertItems(ctx, tx, id, params.Items, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return r.GetByID(ctx, id)
}

// UpdateStatus writes the new status and returns the refreshed aggregate
// along with the status the row held just before the write. The prior value
// is captured by the same statement, under the same row lock, so concurrent
// status changes always report the transition that actually happened.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Aggregate, string, error) {
	query := `
		UPDATE quotations q SET status = $2, updated_at = now()
		FROM (SELECT status FROM quotations WHERE id = $1 FOR UPDATE) prev
		WHERE q.id = $1
		RETURNING prev.status`

	var prior string
	if err := r.pool.QueryRow(ctx, query, id, status).Scan(&prior); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperr.NotFound(quotationNotFoundMsg)
		}
		return nil, "", fmt.Errorf("update quotation status: %w", err)
	}

	agg, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return agg, prior, nil
}

// GetByID loads the full aggregate: header, customer, optional business name
// and items in line order.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*Aggregate, error) {
	agg, err := r.scanAggregate(ctx, r.pool.QueryRow(ctx, selectAggregate+` WHERE q.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quotationNotFoundMsg)
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	agg.Items = items[id]
	return agg, nil
}

// List returns a filtered, sorted page of aggregates plus the total match
// count. Search matches the quotation number or the customer name.
func (r *Repo) List(ctx context.Context, params ListParams) (*ListResult, error) {
	where := ` WHERE ($1::text IS NULL OR q.status = $1)
		AND ($2::text IS NULL OR q.quotation_number ILIKE '%' || $2 || '%' OR c.name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotations q JOIN customers c ON c.id = q.customer_id`+where,
		params.Status, params.Search,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count quotations: %w", err)
	}

	query := selectAggregate + where +
		` ORDER BY ` + sortColumn(params.SortBy) + ` ` + sortDirection(params.SortOrder) +
		` LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, params.Status, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	defer rows.Close()

	var aggs []Aggregate
	var ids []uuid.UUID
	for rows.Next() {
		agg, err := r.scanAggregate(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scan quotation: %w", err)
		}
		aggs = append(aggs, *agg)
		ids = append(ids, agg.Quotation.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotations: %w", err)
	}

	if len(ids) > 0 {
		itemsByQuotation, err := r.loadItems(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range aggs {
			aggs[i].Items = itemsByQuotation[aggs[i].Quotation.ID]
		}
	}

	return &ListResult{Items: aggs, Total: total}, nil
}

// Delete removes a quotation; its items go with it via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

const selectAggregate = `
	SELECT
		q.id, q.quotation_number, q.customer_id, q.business_name_id,
		q.title, q.description, q.notes,
		q.subtotal, q.tax_rate, q.tax_amount, q.total_amount,
		q.status, q.valid_until, q.created_at, q.updated_at,
		c.name, c.email, c.phone, c.address, c.gst_number, c.created_at, c.updated_at,
		b.id, b.name, b.address, b.phone, b.email, b.gst_number, b.is_default, b.is_active
	FROM quotations q
	JOIN customers c ON c.id = q.customer_id
	LEFT JOIN business_names b ON b.id = q.business_name_id`

func (r *Repo) scanAggregate(_ context.Context, row pgx.Row) (*Aggregate, error) {
	var agg Aggregate
	var bnID *uuid.UUID
	var bnName, bnAddress, bnPhone, bnEmail, bnGST *string
	var bnDefault, bnActive *bool

	if err := row.Scan(
		&agg.Quotation.ID, &agg.Quotation.QuotationNumber, &agg.Quotation.CustomerID, &agg.Quotation.BusinessNameID,
		&agg.Quotation.Title, &agg.Quotation.Description, &agg.Quotation.Notes,
		&agg.Quotation.Subtotal, &agg.Quotation.TaxRate, &agg.Quotation.TaxAmount, &agg.Quotation.TotalAmount,
		&agg.Quotation.Status, &agg.Quotation.ValidUntil, &agg.Quotation.CreatedAt, &agg.Quotation.UpdatedAt,
		&agg.Customer.Name, &agg.Customer.Email, &agg.Customer.Phone, &agg.Customer.Address,
		&agg.Customer.GSTNumber, &agg.Customer.CreatedAt, &agg.Customer.UpdatedAt,
		&bnID, &bnName, &bnAddress, &bnPhone, &bnEmail, &bnGST, &bnDefault, &bnActive,
	); err != nil {
		return nil, err
	}
	agg.Customer.ID = agg.Quotation.CustomerID

	if bnID != nil {
		agg.BusinessName = &BusinessName{
			ID:        *bnID,
			Name:      *bnName,
			Address:   bnAddress,
			Phone:     bnPhone,
			Email:     bnEmail,
			GSTNumber: bnGST,
			IsDefault: *bnDefault,
			IsActive:  *bnActive,
		}
	}
	return &agg, nil
}

func (r *Repo) loadItems(ctx context.Context, quotationIDs []uuid.UUID) (map[uuid.UUID][]QuotationItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, quotation_id, is_custom, product_id,
			product_name, product_unit, product_description,
			custom_name, custom_unit, custom_description,
			quantity, unit_price, line_total, sort_order, created_at
		FROM quotation_items
		WHERE quotation_id = ANY($1)
		ORDER BY quotation_id, sort_order ASC`,
		quotationIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("load quotation items: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]QuotationItem, len(quotationIDs))
	for rows.Next() {
		var item QuotationItem
		if err := rows.Scan(
			&item.ID, &item.QuotationID, &item.IsCustom, &item.ProductID,
			&item.ProductName, &item.ProductUnit, &item.ProductDescription,
			&item.CustomName, &item.CustomUnit, &item.CustomDescription,
			&item.Quantity, &item.UnitPrice, &item.LineTotal, &item.SortOrder, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan quotation item: %w", err)
		}
		result[item.QuotationID] = append(result[item.QuotationID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotation items: %w", err)
	}
	return result, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, quotationID uuid.UUID, items []QuotationItem, now time.Time) error {
	for _, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO quotation_items (
				id, quotation_id, is_custom, product_id,
				product_name, product_unit, product_description,
				custom_name, custom_unit, custom_description,
				quantity, unit_price, line_total, sort_order, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			item.ID, quotationID, item.IsCustom, item.ProductID,
			item.ProductName, item.ProductUnit, item.ProductDescription,
			item.CustomName, item.CustomUnit, item.CustomDescription,
			item.Quantity, item.UnitPrice, item.LineTotal, item.SortOrder, now,
		); err != nil {
			if isPgError(err, pgFKViolation) {
				return apperr.NotFound("referenced product not found")
			}
			return fmt.Errorf("insert quotation item: %w", err)
		}
	}
	return nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "quotationNumber":
		return "q.quotation_number"
	case "status":
		return "q.status"
	case "total":
		return "q.total_amount"
	case "updatedAt":
		return "q.updated_at"
	default:
		return "q.created_at"
	}
}

func sortDirection(order string) string {
	if order == "asc" {
		return "ASC"
	}
	return "DESC"
}
