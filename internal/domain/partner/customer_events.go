package partner

import (
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
)

// CustomerCreatedEvent is raised when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID     uuid.UUID `json:"customer_id"`
	CustomerNumber string    `json:"customer_number"`
	Name           string    `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(c *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		CustomerNumber:  c.CustomerNumber,
		Name:            c.Name,
	}
}

// EventType returns the event type name
func (e *CustomerCreatedEvent) EventType() string {
	return EventTypeCustomerCreated
}
