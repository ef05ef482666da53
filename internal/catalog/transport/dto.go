package transport

import (
	"time"

	"github.com/google/uuid"
)

// Categories

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Products

type CreateProductRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	SKU         string     `json:"sku" validate:"required,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Unit        string     `json:"unit" validate:"omitempty,max=50"`
	UnitPrice   float64    `json:"unitPrice" validate:"min=0"`
	GSTRate     float64    `json:"gstRate" validate:"min=0,max=100"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	SKU         *string    `json:"sku,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	Unit        *string    `json:"unit,omitempty" validate:"omitempty,max=50"`
	UnitPrice   *float64   `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
	GSTRate     *float64   `json:"gstRate,omitempty" validate:"omitempty,min=0,max=100"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
}

type ListProductsRequest struct {
	Search     string `form:"search" validate:"max=100"`
	CategoryID string `form:"categoryId" validate:"omitempty"`
	ActiveOnly bool   `form:"activeOnly"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ProductResponse struct {
	ID          uuid.UUID  `json:"id"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Name        string     `json:"name"`
	SKU         string     `json:"sku"`
	Description *string    `json:"description,omitempty"`
	Unit        string     `json:"unit"`
	UnitPrice   float64    `json:"unitPrice"`
	GSTRate     float64    `json:"gstRate"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ProductListResponse struct {
	Items      []ProductResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
