package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tradequote_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of pgx.Tx the customer resolver needs, so resolution
// always runs inside the caller's transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MergeContact folds the incoming payload into an existing customer record.
// Non-empty incoming fields win; blank or absent fields never clear stored
// values. Name is the identity key and is left untouched.
func MergeContact(existing Customer, in CustomerInput) Customer {
	merged := existing
	if v := strptr(in.Email); v != nil {
		merged.Email = v
	}
	if v := strptr(in.Phone); v != nil {
		merged.Phone = v
	}
	if v := strptr(in.Address); v != nil {
		merged.Address = v
	}
	if v := strptr(in.GSTNumber); v != nil {
		merged.GSTNumber = v
	}
	return merged
}

func strptr(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}

// resolveCustomer turns a CustomerSpec into a customer row inside the given
// transaction and returns the resolved record.
func resolveCustomer(ctx context.Context, tx querier, spec CustomerSpec) (*Customer, error) {
	switch spec.Mode {
	case ResolveUseExisting:
		c, err := fetchCustomer(ctx, tx, spec.ExistingID)
		if err != nil {
			return nil, err
		}
		return c, nil

	case ResolveMergeByIdentity:
		existing, err := findCustomerByIdentity(ctx, tx, spec.Input.Name, strptr(spec.Input.Email))
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return insertCustomer(ctx, tx, spec.Input)
		}
		merged := MergeContact(*existing, spec.Input)
		merged.UpdatedAt = time.Now()
		if _, err := tx.Exec(ctx, `
			UPDATE customers SET email = $2, phone = $3, address = $4, gst_number = $5, updated_at = $6
			WHERE id = $1`,
			merged.ID, merged.Email, merged.Phone, merged.Address, merged.GSTNumber, merged.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("merge customer contact: %w", err)
		}
		return &merged, nil

	case ResolveAlwaysCreate:
		return insertCustomer(ctx, tx, spec.Input)

	default:
		return nil, apperr.Internal(fmt.Sprintf("unknown customer resolve mode %d", spec.Mode))
	}
}

// findCustomerByIdentity looks a customer up by the (name, email) identity
// pair. IS NOT DISTINCT FROM makes a NULL email match only records that also
// have no email. Ties on identity are broken by oldest record first.
func findCustomerByIdentity(ctx context.Context, tx querier, name string, email *string) (*Customer, error) {
	var c Customer
	err := tx.QueryRow(ctx, `
		SELECT id, name, email, phone, address, gst_number, created_at, updated_at
		FROM customers
		WHERE name = $1 AND email IS NOT DISTINCT FROM $2
		ORDER BY created_at ASC
		LIMIT 1`,
		name, email,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.GSTNumber, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer by identity: %w", err)
	}
	return &c, nil
}

func fetchCustomer(ctx context.Context, tx querier, id uuid.UUID) (*Customer, error) {
	var c Customer
	err := tx.QueryRow(ctx, `
		SELECT id, name, email, phone, address, gst_number, created_at, updated_at
		FROM customers WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.GSTNumber, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func insertCustomer(ctx context.Context, tx querier, in CustomerInput) (*Customer, error) {
	now := time.Now()
	c := Customer{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     strptr(in.Email),
		Phone:     strptr(in.Phone),
		Address:   strptr(in.Address),
		GSTNumber: strptr(in.GSTNumber),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, address, gst_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.GSTNumber, c.CreatedAt, c.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &c, nil
}
