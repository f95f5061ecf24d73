package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/buchmeister/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A draft may be accepted directly when the customer agrees informally.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent || target == QuoteStatusAccepted || target == QuoteStatusRejected
	case QuoteStatusSent:
		return target == QuoteStatusAccepted || target == QuoteStatusRejected
	case QuoteStatusAccepted, QuoteStatusRejected:
		return false // Terminal states
	}
	return false
}

// QuoteItem represents a line item on a quote
type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Unit        string          `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VATRate     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:numeric;not null"`
	VATAmount   decimal.Decimal `gorm:"type:numeric;not null"`
	Total       decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (QuoteItem) TableName() string {
	return "quote_items"
}

// NewQuoteItem creates a new quote line item
func NewQuoteItem(quoteID uuid.UUID, description, unit string, quantity, unitPrice, vatRate decimal.Decimal) (*QuoteItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unit == "" {
		unit = DefaultItemUnit
	}

	now := time.Now()
	item := &QuoteItem{
		ID:          uuid.New(),
		QuoteID:     quoteID,
		Description: description,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Full precision; cent rounding is a rendering concern
	item.Subtotal = quantity.Mul(unitPrice)
	item.VATAmount = item.Subtotal.Mul(vatRate).Div(decimal.NewFromInt(100))
	item.Total = item.Subtotal.Add(item.VATAmount)
	return item, nil
}

// Quote is the aggregate root for customer quotes (Angebote)
type Quote struct {
	shared.BaseAggregateRoot
	QuoteNumber  string    `gorm:"not null;uniqueIndex"`
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerName string    `gorm:"not null"`
	QuoteDate    time.Time `gorm:"not null"`
	ValidUntil   time.Time `gorm:"not null"`
	Items        []QuoteItem
	Subtotal     decimal.Decimal `gorm:"type:numeric;not null"`
	TotalVAT     decimal.Decimal `gorm:"type:numeric;not null"`
	TotalGross   decimal.Decimal `gorm:"type:numeric;not null"`
	Currency     string          `gorm:"not null;default:EUR"`
	Status       QuoteStatus     `gorm:"not null;index"`
	Notes        string
	SentAt       *time.Time
	AcceptedAt   *time.Time
	RejectedAt   *time.Time
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a new draft quote
func NewQuote(quoteNumber string, customerID uuid.UUID, customerName string, quoteDate, validUntil time.Time) (*Quote, error) {
	if quoteNumber == "" {
		return nil, shared.NewDomainError("INVALID_QUOTE_NUMBER", "Quote number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	q := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		QuoteNumber:       quoteNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		QuoteDate:         quoteDate,
		ValidUntil:        validUntil,
		Items:             make([]QuoteItem, 0),
		Subtotal:          decimal.Zero,
		TotalVAT:          decimal.Zero,
		TotalGross:        decimal.Zero,
		Currency:          string(valueobject.DefaultCurrency),
		Status:            QuoteStatusDraft,
	}

	q.AddDomainEvent(NewQuoteCreatedEvent(q))

	return q, nil
}

// CanModify returns true if the quote content may still be changed
func (q *Quote) CanModify() bool {
	return q.Status == QuoteStatusDraft
}

// AddItem appends a line item. Only allowed while the quote is a draft.
func (q *Quote) AddItem(description, unit string, quantity, unitPrice, vatRate decimal.Decimal) (*QuoteItem, error) {
	if !q.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft quote")
	}

	item, err := NewQuoteItem(q.ID, description, unit, quantity, unitPrice, vatRate)
	if err != nil {
		return nil, err
	}
	item.Position = len(q.Items) + 1

	q.Items = append(q.Items, *item)
	q.recalculateTotals()
	q.UpdatedAt = time.Now()

	return item, nil
}

// RemoveItem removes a line item. Only allowed while draft.
func (q *Quote) RemoveItem(itemID uuid.UUID) error {
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft quote")
	}

	for idx, item := range q.Items {
		if item.ID == itemID {
			q.Items = append(q.Items[:idx], q.Items[idx+1:]...)
			for pos := range q.Items {
				q.Items[pos].Position = pos + 1
			}
			q.recalculateTotals()
			q.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Quote item not found")
}

func (q *Quote) recalculateTotals() {
	subtotal := decimal.Zero
	totalVAT := decimal.Zero
	totalGross := decimal.Zero
	for _, item := range q.Items {
		subtotal = subtotal.Add(item.Subtotal)
		totalVAT = totalVAT.Add(item.VATAmount)
		totalGross = totalGross.Add(item.Total)
	}
	q.Subtotal = subtotal
	q.TotalVAT = totalVAT
	q.TotalGross = totalGross
}

// Send marks the quote as sent to the customer
func (q *Quote) Send() error {
	if !q.Status.CanTransitionTo(QuoteStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quote in %s status", q.Status))
	}
	if len(q.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send quote without items")
	}

	now := time.Now()
	q.Status = QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteSentEvent(q))

	return nil
}

// Accept marks the quote as accepted by the customer
func (q *Quote) Accept(now time.Time) error {
	if !q.Status.CanTransitionTo(QuoteStatusAccepted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot accept quote in %s status", q.Status))
	}

	q.Status = QuoteStatusAccepted
	q.AcceptedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteAcceptedEvent(q))

	return nil
}

// Reject marks the quote as rejected by the customer
func (q *Quote) Reject(now time.Time) error {
	if !q.Status.CanTransitionTo(QuoteStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject quote in %s status", q.Status))
	}

	q.Status = QuoteStatusRejected
	q.RejectedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteRejectedEvent(q))

	return nil
}
