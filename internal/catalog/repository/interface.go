package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the database model for a catalog product.
type Product struct {
	ID          uuid.UUID  `db:"id"`
	CategoryID  *uuid.UUID `db:"category_id"`
	Name        string     `db:"name"`
	SKU         string     `db:"sku"`
	Description *string    `db:"description"`
	Unit        string     `db:"unit"`
	UnitPrice   float64    `db:"unit_price"`
	GSTRate     float64    `db:"gst_rate"`
	IsActive    bool       `db:"is_active"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Category is the database model for a product category.
type Category struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// ListProductsParams contains parameters for listing products.
type ListProductsParams struct {
	Search     string
	CategoryID *uuid.UUID
	ActiveOnly bool
	Page       int
	PageSize   int
}

// Repository defines the catalog persistence operations.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]Product, int, error)

	CreateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]Category, error)
}
