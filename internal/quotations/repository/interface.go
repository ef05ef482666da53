package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Quotation is the database model for a quotation header.
type Quotation struct {
	ID              uuid.UUID
	QuotationNumber string
	CustomerID      uuid.UUID
	BusinessNameID  *uuid.UUID
	Title           *string
	Description     *string
	Notes           *string
	Subtotal        float64
	TaxRate         float64
	TaxAmount       float64
	TotalAmount     float64
	Status          string
	ValidUntil      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuotationItem is the database model for a line item. For catalog items the
// product name, unit and description are copied in at quotation time, so the
// line survives later product edits unchanged.
type QuotationItem struct {
	ID                 uuid.UUID
	QuotationID        uuid.UUID
	IsCustom           bool
	ProductID          *uuid.UUID
	ProductName        *string
	ProductUnit        *string
	ProductDescription *string
	CustomName         *string
	CustomUnit         *string
	CustomDescription  *string
	Quantity           float64
	UnitPrice          float64
	LineTotal          float64
	SortOrder          int
	CreatedAt          time.Time
}

// Customer mirrors the customers table for the quotation read model.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	Address   *string
	GSTNumber *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BusinessName mirrors the business_names table for the quotation read model.
type BusinessName struct {
	ID        uuid.UUID
	Name      string
	Address   *string
	Phone     *string
	Email     *string
	GSTNumber *string
	IsDefault bool
	IsActive  bool
}

// Aggregate is a quotation with its resolved customer, optional seller
// identity and line items. Every read and write returns the full aggregate.
type Aggregate struct {
	Quotation    Quotation
	Customer     Customer
	BusinessName *BusinessName
	Items        []QuotationItem
}

// ResolveMode selects how the customer payload is turned into a customer row.
type ResolveMode int

const (
	// ResolveUseExisting attaches the quotation to the customer identified
	// by ExistingID and ignores the embedded payload.
	ResolveUseExisting ResolveMode = iota
	// ResolveMergeByIdentity reuses the customer matching (name, email) and
	// merges the payload into it, or creates one when no match exists.
	ResolveMergeByIdentity
	// ResolveAlwaysCreate creates a fresh customer row unconditionally.
	ResolveAlwaysCreate
)

// CustomerInput is the contact payload supplied with a quotation.
type CustomerInput struct {
	Name      string
	Email     *string
	Phone     *string
	Address   *string
	GSTNumber *string
}

// CustomerSpec tells the store how to resolve the quotation's customer.
type CustomerSpec struct {
	Mode       ResolveMode
	ExistingID uuid.UUID
	Input      CustomerInput
}

// CreateParams carries a fully validated quotation ready to persist. Items
// already have their IDs assigned and product details copied in.
type CreateParams struct {
	ID             uuid.UUID
	Customer       CustomerSpec
	BusinessNameID *uuid.UUID
	Title          *string
	Description    *string
	Notes          *string
	Subtotal       float64
	TaxRate        float64
	TaxAmount      float64
	TotalAmount    float64
	Status         string
	ValidUntil     *time.Time
	Items          []QuotationItem
}

// UpdateParams carries the full replacement state for an existing quotation.
// The stored status and quotation number are preserved.
type UpdateParams struct {
	Customer       CustomerSpec
	BusinessNameID *uuid.UUID
	Title          *string
	Description    *string
	Notes          *string
	Subtotal       float64
	TaxRate        float64
	TaxAmount      float64
	TotalAmount    float64
	ValidUntil     *time.Time
	Items          []QuotationItem
}

// ListParams defines filtering and pagination for listing quotations.
type ListParams struct {
	Status    *string
	Search    *string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ListResult is a page of quotation aggregates with the unfiltered total.
type ListResult struct {
	Items []Aggregate
	Total int
}

// Store defines the persistence operations for quotations. Create and Update
// are atomic: customer resolution, number allocation and item writes all
// commit or roll back together.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*Aggregate, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Aggregate, error)
	// UpdateStatus returns the refreshed aggregate and the status the
	// quotation held before the write, read atomically with the write.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Aggregate, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Aggregate, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
