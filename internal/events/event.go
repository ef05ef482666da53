// Package events provides domain event definitions for decoupled
// communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"tradequote_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quotation Domain Events
// =============================================================================

// QuotationCreated is published after a quotation and its items are persisted.
type QuotationCreated struct {
	BaseEvent
	QuotationID     uuid.UUID `json:"quotationId"`
	QuotationNumber string    `json:"quotationNumber"`
	CustomerID      uuid.UUID `json:"customerId"`
	TotalAmount     float64   `json:"totalAmount"`
}

func (e QuotationCreated) EventName() string { return "quotation.created" }

// QuotationStatusChanged is published after a quotation's status is updated.
type QuotationStatusChanged struct {
	BaseEvent
	QuotationID     uuid.UUID `json:"quotationId"`
	QuotationNumber string    `json:"quotationNumber"`
	OldStatus       string    `json:"oldStatus"`
	NewStatus       string    `json:"newStatus"`
}

func (e QuotationStatusChanged) EventName() string { return "quotation.status_changed" }

// =============================================================================
// Business Name Domain Events
// =============================================================================

// BusinessNameDefaultChanged is published after the default business name flips.
type BusinessNameDefaultChanged struct {
	BaseEvent
	BusinessNameID uuid.UUID `json:"businessNameId"`
	Name           string    `json:"name"`
}

func (e BusinessNameDefaultChanged) EventName() string { return "businessname.default_changed" }
