package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
	GSTNumber *string `json:"gstNumber,omitempty" validate:"omitempty,max=30"`
}

// UpdateCustomerRequest uses pointer-present semantics: a present field is
// written as-is, including an empty string which clears the stored value.
type UpdateCustomerRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,max=200"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
	GSTNumber *string `json:"gstNumber,omitempty" validate:"omitempty,max=30"`
}

type ListCustomersRequest struct {
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	GSTNumber *string   `json:"gstNumber,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CustomerListResponse struct {
	Items      []CustomerResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}
