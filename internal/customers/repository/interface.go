package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Customer is the database model for a customer.
type Customer struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     *string   `db:"email"`
	Phone     *string   `db:"phone"`
	Address   *string   `db:"address"`
	GSTNumber *string   `db:"gst_number"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ListParams contains parameters for listing customers.
type ListParams struct {
	Search   string
	Page     int
	PageSize int
}

// Repository defines the customer persistence operations.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	// Delete removes a customer. Customers owning quotations cannot be
	// deleted; the repository returns a Conflict in that case.
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, params ListParams) ([]Customer, int, error)
}
