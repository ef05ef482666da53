package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateBusinessNameRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=200"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=200"`
	GSTNumber *string `json:"gstNumber,omitempty" validate:"omitempty,max=30"`
	IsDefault bool    `json:"isDefault"`
}

type UpdateBusinessNameRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email     *string `json:"email,omitempty" validate:"omitempty,max=200"`
	GSTNumber *string `json:"gstNumber,omitempty" validate:"omitempty,max=30"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

type BusinessNameResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	GSTNumber *string   `json:"gstNumber,omitempty"`
	IsDefault bool      `json:"isDefault"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DeleteBusinessNameResponse reports whether the record was removed or, when
// referenced by quotations, deactivated instead.
type DeleteBusinessNameResponse struct {
	Status string `json:"status"` // "deleted" or "deactivated"
}
