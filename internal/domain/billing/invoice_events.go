package billing

import (
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated      = "InvoiceCreated"
	EventTypeInvoiceSent         = "InvoiceSent"
	EventTypeInvoicePaid         = "InvoicePaid"
	EventTypeInvoiceCancelled    = "InvoiceCancelled"
	EventTypeInvoiceCorrected    = "InvoiceCorrected"
	EventTypeCancellationCreated = "CancellationCreated"
	EventTypeCorrectionCreated   = "CorrectionCreated"
)

// InvoiceCreatedEvent is raised when a new invoice draft is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
	}
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// InvoiceSentEvent is raised when an invoice is issued and locked
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalGross    decimal.Decimal `json:"total_gross"`
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalGross:      inv.TotalGross,
	}
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return EventTypeInvoiceSent
}

// InvoicePaidEvent is raised when payment is recorded
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	amount := inv.TotalGross
	if inv.PaidAmount != nil {
		amount = *inv.PaidAmount
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PaidAmount:      amount,
	}
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}

// InvoiceCancelledEvent is raised on the original invoice when a Storno
// document is created for it
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	StornoID      uuid.UUID `json:"storno_id"`
	Reason        string    `json:"reason"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, stornoID uuid.UUID) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		StornoID:        stornoID,
		Reason:          inv.CancellationReason,
	}
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return EventTypeInvoiceCancelled
}

// InvoiceCorrectedEvent is raised on the original invoice when a
// correction document is linked to it
type InvoiceCorrectedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID `json:"invoice_id"`
	CorrectionID uuid.UUID `json:"correction_id"`
}

// NewInvoiceCorrectedEvent creates a new InvoiceCorrectedEvent
func NewInvoiceCorrectedEvent(inv *Invoice, correctionID uuid.UUID) *InvoiceCorrectedEvent {
	return &InvoiceCorrectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCorrected, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		CorrectionID:    correctionID,
	}
}

// EventType returns the event type name
func (e *InvoiceCorrectedEvent) EventType() string {
	return EventTypeInvoiceCorrected
}

// CancellationCreatedEvent is raised on the new Storno document
type CancellationCreatedEvent struct {
	shared.BaseDomainEvent
	StornoID       uuid.UUID       `json:"storno_id"`
	StornoNumber   string          `json:"storno_number"`
	OriginalID     uuid.UUID       `json:"original_id"`
	OriginalNumber string          `json:"original_number"`
	TotalGross     decimal.Decimal `json:"total_gross"`
}

// NewCancellationCreatedEvent creates a new CancellationCreatedEvent
func NewCancellationCreatedEvent(storno, original *Invoice) *CancellationCreatedEvent {
	return &CancellationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCancellationCreated, AggregateTypeInvoice, storno.ID),
		StornoID:        storno.ID,
		StornoNumber:    storno.InvoiceNumber,
		OriginalID:      original.ID,
		OriginalNumber:  original.InvoiceNumber,
		TotalGross:      storno.TotalGross,
	}
}

// EventType returns the event type name
func (e *CancellationCreatedEvent) EventType() string {
	return EventTypeCancellationCreated
}

// CorrectionCreatedEvent is raised on the new Korrektur document
type CorrectionCreatedEvent struct {
	shared.BaseDomainEvent
	CorrectionID     uuid.UUID       `json:"correction_id"`
	CorrectionNumber string          `json:"correction_number"`
	OriginalID       uuid.UUID       `json:"original_id"`
	OriginalNumber   string          `json:"original_number"`
	TotalGross       decimal.Decimal `json:"total_gross"`
}

// NewCorrectionCreatedEvent creates a new CorrectionCreatedEvent
func NewCorrectionCreatedEvent(correction, original *Invoice) *CorrectionCreatedEvent {
	return &CorrectionCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCorrectionCreated, AggregateTypeInvoice, correction.ID),
		CorrectionID:     correction.ID,
		CorrectionNumber: correction.InvoiceNumber,
		OriginalID:       original.ID,
		OriginalNumber:   original.InvoiceNumber,
		TotalGross:       correction.TotalGross,
	}
}

// EventType returns the event type name
func (e *CorrectionCreatedEvent) EventType() string {
	return EventTypeCorrectionCreated
}
