package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BusinessName is the database model for a seller identity.
// At most one row has IsDefault set; the repository enforces this inside
// every write that touches the flag.
type BusinessName struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Address   *string   `db:"address"`
	Phone     *string   `db:"phone"`
	Email     *string   `db:"email"`
	GSTNumber *string   `db:"gst_number"`
	IsDefault bool      `db:"is_default"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Repository defines the business name persistence operations.
type Repository interface {
	// Create inserts a business name. When b.IsDefault is set, every other
	// row's flag is cleared in the same transaction.
	Create(ctx context.Context, b *BusinessName) error
	// Update writes all fields. When b.IsDefault is set, every other row's
	// flag is cleared in the same transaction.
	Update(ctx context.Context, b *BusinessName) error
	// SetDefault makes the target the sole default in one atomic write.
	SetDefault(ctx context.Context, id uuid.UUID) error
	// Delete hard-deletes an unreferenced business name. A name referenced
	// by quotations is deactivated instead, clearing its default flag in
	// the same write. Returns true when the record was deactivated rather
	// than deleted.
	Delete(ctx context.Context, id uuid.UUID) (deactivated bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*BusinessName, error)
	List(ctx context.Context) ([]BusinessName, error)
}
