package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuotationStatus defines the status of a quotation.
type QuotationStatus string

const (
	StatusDraft    QuotationStatus = "DRAFT"
	StatusSent     QuotationStatus = "SENT"
	StatusAccepted QuotationStatus = "ACCEPTED"
	StatusRejected QuotationStatus = "REJECTED"
	StatusExpired  QuotationStatus = "EXPIRED"
)

// Valid reports whether the status is one of the five known literals.
// Expiry is never applied automatically; EXPIRED is an operator action like
// any other status.
func (s QuotationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// =============================================================================
// Requests
// =============================================================================

// CustomerInfo is the customer payload embedded in a quotation request.
type CustomerInfo struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,max=200"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
	GSTNumber *string `json:"gstNumber,omitempty" validate:"omitempty,max=30"`
}

// QuotationItemRequest is the input for a single line item. Exactly one of
// productId (isCustom=false) or customName (isCustom=true) must be populated.
type QuotationItemRequest struct {
	ProductID         *uuid.UUID `json:"productId,omitempty"`
	CustomName        *string    `json:"customName,omitempty" validate:"omitempty,max=200"`
	CustomUnit        *string    `json:"customUnit,omitempty" validate:"omitempty,max=50"`
	CustomDescription *string    `json:"customDescription,omitempty" validate:"omitempty,max=1000"`
	Quantity          float64    `json:"quantity" validate:"required,gt=0"`
	UnitPrice         float64    `json:"unitPrice" validate:"min=0"`
	LineTotal         float64    `json:"lineTotal" validate:"min=0"`
	IsCustom          bool       `json:"isCustom"`
}

// CreateQuotationRequest is the request body for creating a new quotation.
// The monetary totals are supplied by the caller and validated against the
// line items; they are never silently recomputed.
type CreateQuotationRequest struct {
	CustomerInfo       CustomerInfo           `json:"customerInfo" validate:"required"`
	SelectedCustomerID *uuid.UUID             `json:"selectedCustomerId,omitempty"`
	SaveCustomer       bool                   `json:"saveCustomer"`
	BusinessNameID     *uuid.UUID             `json:"businessNameId,omitempty"`
	Items              []QuotationItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal           float64                `json:"subtotal" validate:"min=0"`
	TaxRate            float64                `json:"taxRate" validate:"min=0,max=100"`
	TaxAmount          float64                `json:"taxAmount" validate:"min=0"`
	TotalAmount        float64                `json:"totalAmount" validate:"min=0"`
	Title              *string                `json:"title,omitempty" validate:"omitempty,max=200"`
	Description        *string                `json:"description,omitempty" validate:"omitempty,max=2000"`
	Notes              *string                `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ValidUntil         *time.Time             `json:"validUntil,omitempty"`
}

// UpdateQuotationRequest carries the full new state of a quotation. Items are
// always replaced wholesale; partial item patches are not supported.
type UpdateQuotationRequest = CreateQuotationRequest

// UpdateStatusRequest is the request body for a status change.
type UpdateStatusRequest struct {
	Status QuotationStatus `json:"status" validate:"required"`
}

// ListQuotationsRequest defines the query parameters for listing quotations.
type ListQuotationsRequest struct {
	Status    string `form:"status" validate:"omitempty,oneof=DRAFT SENT ACCEPTED REJECTED EXPIRED"`
	Search    string `form:"search" validate:"max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=quotationNumber status total createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// =============================================================================
// Responses
// =============================================================================

// CustomerResponse is the resolved customer on a quotation.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	GSTNumber *string   `json:"gstNumber,omitempty"`
}

// BusinessNameResponse is the seller identity on a quotation.
type BusinessNameResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	GSTNumber *string   `json:"gstNumber,omitempty"`
	IsDefault bool      `json:"isDefault"`
	IsActive  bool      `json:"isActive"`
}

// QuotationItemResponse is the response for a single line item.
type QuotationItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	IsCustom    bool       `json:"isCustom"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	Name        string     `json:"name"`
	Unit        string     `json:"unit"`
	Description *string    `json:"description,omitempty"`
	Quantity    float64    `json:"quantity"`
	UnitPrice   float64    `json:"unitPrice"`
	LineTotal   float64    `json:"lineTotal"`
	SortOrder   int        `json:"sortOrder"`
}

// QuotationResponse is the persisted aggregate returned by every write.
type QuotationResponse struct {
	ID              uuid.UUID               `json:"id"`
	QuotationNumber string                  `json:"quotationNumber"`
	Customer        CustomerResponse        `json:"customer"`
	BusinessName    *BusinessNameResponse   `json:"businessName,omitempty"`
	Title           *string                 `json:"title,omitempty"`
	Description     *string                 `json:"description,omitempty"`
	Notes           *string                 `json:"notes,omitempty"`
	Subtotal        float64                 `json:"subtotal"`
	TaxRate         float64                 `json:"taxRate"`
	TaxAmount       float64                 `json:"taxAmount"`
	TotalAmount     float64                 `json:"totalAmount"`
	Status          QuotationStatus         `json:"status"`
	ValidUntil      *time.Time              `json:"validUntil,omitempty"`
	Items           []QuotationItemResponse `json:"items"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// QuotationListResponse is the paginated list response.
type QuotationListResponse struct {
	Items      []QuotationResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}
