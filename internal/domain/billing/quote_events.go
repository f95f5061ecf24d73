package billing

import (
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeQuote = "Quote"

// Event type constants
const (
	EventTypeQuoteCreated   = "QuoteCreated"
	EventTypeQuoteSent      = "QuoteSent"
	EventTypeQuoteAccepted  = "QuoteAccepted"
	EventTypeQuoteRejected  = "QuoteRejected"
	EventTypeQuoteConverted = "QuoteConverted"
)

// QuoteCreatedEvent is raised when a new quote draft is created
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteID      uuid.UUID `json:"quote_id"`
	QuoteNumber  string    `json:"quote_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(q *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
		CustomerID:      q.CustomerID,
		CustomerName:    q.CustomerName,
	}
}

// EventType returns the event type name
func (e *QuoteCreatedEvent) EventType() string {
	return EventTypeQuoteCreated
}

// QuoteSentEvent is raised when a quote is sent to the customer
type QuoteSentEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID       `json:"quote_id"`
	QuoteNumber string          `json:"quote_number"`
	TotalGross  decimal.Decimal `json:"total_gross"`
}

// NewQuoteSentEvent creates a new QuoteSentEvent
func NewQuoteSentEvent(q *Quote) *QuoteSentEvent {
	return &QuoteSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSent, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
		TotalGross:      q.TotalGross,
	}
}

// EventType returns the event type name
func (e *QuoteSentEvent) EventType() string {
	return EventTypeQuoteSent
}

// QuoteAcceptedEvent is raised when a quote is accepted
type QuoteAcceptedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
}

// NewQuoteAcceptedEvent creates a new QuoteAcceptedEvent
func NewQuoteAcceptedEvent(q *Quote) *QuoteAcceptedEvent {
	return &QuoteAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteAccepted, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
	}
}

// EventType returns the event type name
func (e *QuoteAcceptedEvent) EventType() string {
	return EventTypeQuoteAccepted
}

// QuoteRejectedEvent is raised when a quote is rejected
type QuoteRejectedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
}

// NewQuoteRejectedEvent creates a new QuoteRejectedEvent
func NewQuoteRejectedEvent(q *Quote) *QuoteRejectedEvent {
	return &QuoteRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRejected, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
	}
}

// EventType returns the event type name
func (e *QuoteRejectedEvent) EventType() string {
	return EventTypeQuoteRejected
}

// QuoteConvertedEvent is raised when a quote is converted into an invoice
type QuoteConvertedEvent struct {
	shared.BaseDomainEvent
	QuoteID       uuid.UUID `json:"quote_id"`
	QuoteNumber   string    `json:"quote_number"`
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// NewQuoteConvertedEvent creates a new QuoteConvertedEvent
func NewQuoteConvertedEvent(q *Quote, inv *Invoice) *QuoteConvertedEvent {
	return &QuoteConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteConverted, AggregateTypeQuote, q.ID),
		QuoteID:         q.ID,
		QuoteNumber:     q.QuoteNumber,
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
	}
}

// EventType returns the event type name
func (e *QuoteConvertedEvent) EventType() string {
	return EventTypeQuoteConverted
}
