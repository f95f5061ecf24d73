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

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A draft may be marked paid directly (cash sale without a dispatch step).
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusSent || target == InvoiceStatusPaid
	case InvoiceStatusSent:
		return target == InvoiceStatusPaid
	case InvoiceStatusPaid:
		return false // Terminal state
	}
	return false
}

// CorrectionType distinguishes documents that amend another invoice
type CorrectionType string

const (
	// CorrectionTypeCancellation is a Storno document that fully negates its original
	CorrectionTypeCancellation CorrectionType = "CANCELLATION"
	// CorrectionTypeCorrection is a Korrektur document carrying differential amounts
	CorrectionTypeCorrection CorrectionType = "CORRECTION"
)

// Item description prefixes for amendment documents
const (
	stornoItemPrefix    = "[STORNO] "
	korrekturItemPrefix = "[KORREKTUR] "
)

// StornoPaymentTerms is stamped on cancellation documents
const StornoPaymentTerms = "Stornierung - keine Zahlung erforderlich"

// DefaultPaymentTerms is the standard net payment term
const DefaultPaymentTerms = "14 Tage netto"

// DefaultPaymentDays is the number of days granted by the default terms
const DefaultPaymentDays = 14

// DefaultItemUnit is the unit assumed when a line item specifies none
const DefaultItemUnit = "Stück"

// DefaultVATRate is the standard German VAT rate in percent
var DefaultVATRate = decimal.NewFromInt(19)

// InvoiceItem represents a line item on an invoice
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
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
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoiceItem creates a new invoice line item. Quantity may be negative
// on amendment documents but never zero. Amounts are derived:
// subtotal = quantity * unitPrice, vat = subtotal * rate / 100.
func NewInvoiceItem(invoiceID uuid.UUID, description, unit string, quantity, unitPrice, vatRate decimal.Decimal) (*InvoiceItem, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity cannot be zero")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate must be between 0 and 100")
	}
	if unit == "" {
		unit = DefaultItemUnit
	}

	now := time.Now()
	item := &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice,
		VATRate:     vatRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.recalculate()
	return item, nil
}

// Amounts are stored at full precision; rounding to cents happens only
// when a document is rendered or exported.
func (i *InvoiceItem) recalculate() {
	i.Subtotal = i.Quantity.Mul(i.UnitPrice)
	i.VATAmount = i.Subtotal.Mul(i.VATRate).Div(decimal.NewFromInt(100))
	i.Total = i.Subtotal.Add(i.VATAmount)
}

// Update replaces the mutable fields of the item and recalculates amounts
func (i *InvoiceItem) Update(description, unit string, quantity, unitPrice, vatRate decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity cannot be zero")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if unit == "" {
		unit = DefaultItemUnit
	}

	i.Description = description
	i.Unit = unit
	i.Quantity = quantity
	i.UnitPrice = unitPrice
	i.VATRate = vatRate
	i.recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// negated returns a copy of the item with quantity and derived amounts
// sign-reversed, keeping unit price and VAT rate as issued.
func (i InvoiceItem) negated(invoiceID uuid.UUID, prefix string) InvoiceItem {
	now := time.Now()
	return InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Position:    i.Position,
		Description: prefix + i.Description,
		Quantity:    i.Quantity.Neg(),
		Unit:        i.Unit,
		UnitPrice:   i.UnitPrice,
		VATRate:     i.VATRate,
		Subtotal:    i.Subtotal.Neg(),
		VATAmount:   i.VATAmount.Neg(),
		Total:       i.Total.Neg(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Invoice is the aggregate root for outgoing invoices. Once an invoice
// leaves the draft state it is locked for good; later changes happen
// through cancellation or correction documents that reference it.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string    `gorm:"not null;uniqueIndex"`
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerName  string    `gorm:"not null"`
	InvoiceDate   time.Time `gorm:"not null"`
	DueDate       time.Time `gorm:"not null"`
	Items         []InvoiceItem
	Subtotal      decimal.Decimal `gorm:"type:numeric;not null"`
	TotalVAT      decimal.Decimal `gorm:"type:numeric;not null"`
	TotalGross    decimal.Decimal `gorm:"type:numeric;not null"`
	Currency      string          `gorm:"not null;default:EUR"`
	Status        InvoiceStatus   `gorm:"not null;index"`
	PaymentTerms  string
	Notes         string

	IsLocked bool `gorm:"not null;default:false"`
	LockedAt *time.Time
	SentAt   *time.Time

	PaidAt     *time.Time
	PaidAmount *decimal.Decimal `gorm:"type:numeric"`

	IsCancelled        bool `gorm:"not null;default:false"`
	CancelledAt        *time.Time
	CancellationReason string

	CorrectionType *CorrectionType `gorm:"index"`
	CorrectsID     *uuid.UUID      `gorm:"type:uuid;index"`
	CorrectedByID  *uuid.UUID      `gorm:"type:uuid"`

	QuoteID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice
func NewInvoice(invoiceNumber string, customerID uuid.UUID, customerName string, invoiceDate, dueDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        customerID,
		CustomerName:      customerName,
		InvoiceDate:       invoiceDate,
		DueDate:           dueDate,
		Items:             make([]InvoiceItem, 0),
		Subtotal:          decimal.Zero,
		TotalVAT:          decimal.Zero,
		TotalGross:        decimal.Zero,
		Currency:          string(valueobject.DefaultCurrency),
		Status:            InvoiceStatusDraft,
		PaymentTerms:      DefaultPaymentTerms,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// CanModify returns true if the invoice content may still be changed
func (inv *Invoice) CanModify() bool {
	return inv.Status == InvoiceStatusDraft && !inv.IsLocked
}

// CanBeDeleted returns true if the invoice may be removed entirely
func (inv *Invoice) CanBeDeleted() bool {
	return inv.Status == InvoiceStatusDraft && !inv.IsLocked
}

// IsAmendment returns true for cancellation and correction documents
func (inv *Invoice) IsAmendment() bool {
	return inv.CorrectionType != nil
}

// IsOverdue returns true if the invoice is sent, unpaid and past due
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status == InvoiceStatusSent && !inv.IsCancelled && now.After(inv.DueDate)
}

// AddItem appends a line item. Only allowed while the invoice is a draft.
func (inv *Invoice) AddItem(description, unit string, quantity, unitPrice, vatRate decimal.Decimal) (*InvoiceItem, error) {
	if !inv.CanModify() {
		return nil, shared.NewDomainError("DOCUMENT_LOCKED", "Cannot edit items of sent invoice. Create a cancellation invoice instead.")
	}

	item, err := NewInvoiceItem(inv.ID, description, unit, quantity, unitPrice, vatRate)
	if err != nil {
		return nil, err
	}
	item.Position = len(inv.Items) + 1

	inv.Items = append(inv.Items, *item)
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return item, nil
}

// UpdateItem updates an existing line item. Only allowed while draft.
func (inv *Invoice) UpdateItem(itemID uuid.UUID, description, unit string, quantity, unitPrice, vatRate decimal.Decimal) error {
	if !inv.CanModify() {
		return shared.NewDomainError("DOCUMENT_LOCKED", "Cannot edit items of sent invoice. Create a cancellation invoice instead.")
	}

	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			if err := inv.Items[idx].Update(description, unit, quantity, unitPrice, vatRate); err != nil {
				return err
			}
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// RemoveItem removes a line item. Only allowed while draft.
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if !inv.CanModify() {
		return shared.NewDomainError("DOCUMENT_LOCKED", "Cannot edit items of sent invoice. Create a cancellation invoice instead.")
	}

	for idx, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			for pos := range inv.Items {
				inv.Items[pos].Position = pos + 1
			}
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// SetNotes sets free-form notes. Only allowed while draft.
func (inv *Invoice) SetNotes(notes string) error {
	if !inv.CanModify() {
		return shared.NewDomainError("DOCUMENT_LOCKED", "Invoice is locked and cannot be edited. Create a cancellation or correction invoice instead.")
	}
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
	return nil
}

// SetPaymentTerms sets the payment terms. Only allowed while draft.
func (inv *Invoice) SetPaymentTerms(terms string) error {
	if !inv.CanModify() {
		return shared.NewDomainError("DOCUMENT_LOCKED", "Invoice is locked and cannot be edited. Create a cancellation or correction invoice instead.")
	}
	inv.PaymentTerms = terms
	inv.UpdatedAt = time.Now()
	return nil
}

func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	totalVAT := decimal.Zero
	totalGross := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Subtotal)
		totalVAT = totalVAT.Add(item.VATAmount)
		totalGross = totalGross.Add(item.Total)
	}
	inv.Subtotal = subtotal
	inv.TotalVAT = totalVAT
	inv.TotalGross = totalGross
}

// Send issues the invoice. This locks it permanently; from here on only
// cancellation or correction documents can change what it states.
func (inv *Invoice) Send() error {
	if !inv.Status.CanTransitionTo(InvoiceStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot send invoice without items")
	}

	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.IsLocked = true
	inv.LockedAt = &now
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// MarkPaid records payment. Defaults: paidAt is now, paidAmount is the
// gross total. Marking a draft paid locks it, same as sending.
func (inv *Invoice) MarkPaid(paidAt *time.Time, paidAmount *decimal.Decimal) error {
	if inv.IsCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a cancelled invoice as paid")
	}
	if !inv.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark invoice in %s status as paid", inv.Status))
	}

	now := time.Now()
	at := now
	if paidAt != nil {
		at = *paidAt
	}
	amount := inv.TotalGross
	if paidAmount != nil {
		amount = *paidAmount
	}

	inv.Status = InvoiceStatusPaid
	inv.PaidAt = &at
	inv.PaidAmount = &amount
	if !inv.IsLocked {
		inv.IsLocked = true
		inv.LockedAt = &now
	}
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoicePaidEvent(inv))

	return nil
}

// BuildCancellation creates the Storno document that fully negates this
// invoice. The returned document is born locked with sent status. The
// caller must persist it together with MarkCancelled on the original in
// one transaction.
func (inv *Invoice) BuildCancellation(stornoNumber, reason string, now time.Time) (*Invoice, error) {
	if inv.Status == InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot cancel draft invoice. Delete it instead.")
	}
	if inv.IsCancelled {
		return nil, shared.NewDomainError("ALREADY_CANCELLED", "Invoice is already cancelled")
	}
	if !inv.IsLocked {
		return nil, shared.NewDomainError("INVALID_STATE", "Only locked (sent/paid) invoices can be cancelled")
	}
	if stornoNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}

	correctionType := CorrectionTypeCancellation
	storno := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     stornoNumber,
		CustomerID:        inv.CustomerID,
		CustomerName:      inv.CustomerName,
		InvoiceDate:       now,
		DueDate:           now,
		Subtotal:          inv.Subtotal.Neg(),
		TotalVAT:          inv.TotalVAT.Neg(),
		TotalGross:        inv.TotalGross.Neg(),
		Currency:          inv.Currency,
		Status:            InvoiceStatusSent,
		PaymentTerms:      StornoPaymentTerms,
		Notes:             fmt.Sprintf("Stornierung von Rechnung %s\n\nGrund: %s", inv.InvoiceNumber, reason),
		IsLocked:          true,
		LockedAt:          &now,
		SentAt:            &now,
		CorrectionType:    &correctionType,
		CorrectsID:        &inv.ID,
	}

	storno.Items = make([]InvoiceItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		storno.Items = append(storno.Items, item.negated(storno.ID, stornoItemPrefix))
	}

	storno.AddDomainEvent(NewCancellationCreatedEvent(storno, inv))

	return storno, nil
}

// MarkCancelled flags this invoice as cancelled by the given Storno
// document. Called together with persisting the Storno.
func (inv *Invoice) MarkCancelled(stornoID uuid.UUID, reason string, now time.Time) error {
	if inv.IsCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Invoice is already cancelled")
	}

	inv.IsCancelled = true
	inv.CancelledAt = &now
	inv.CancellationReason = reason
	inv.CorrectedByID = &stornoID
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, stornoID))

	return nil
}

// CorrectionLine is one differential position for a correction document
type CorrectionLine struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
}

// BuildCorrection creates a Korrektur document carrying only the
// differences to this invoice. The returned document is born locked with
// sent status and due in 14 days. Each original may be corrected once.
func (inv *Invoice) BuildCorrection(correctionNumber, reason string, lines []CorrectionLine, now time.Time) (*Invoice, error) {
	if inv.Status == InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Draft invoices can be edited directly, no correction needed")
	}
	if inv.IsCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot correct a cancelled invoice")
	}
	if inv.CorrectedByID != nil {
		return nil, shared.NewDomainError("ALREADY_CORRECTED", "Invoice already has a correction document")
	}
	if correctionNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Correction requires at least one position")
	}

	correctionType := CorrectionTypeCorrection
	correction := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     correctionNumber,
		CustomerID:        inv.CustomerID,
		CustomerName:      inv.CustomerName,
		InvoiceDate:       now,
		DueDate:           now.AddDate(0, 0, DefaultPaymentDays),
		Currency:          inv.Currency,
		Status:            InvoiceStatusSent,
		PaymentTerms:      inv.PaymentTerms,
		Notes:             fmt.Sprintf("Korrekturrechnung zu Rechnung %s\n\nGrund: %s", inv.InvoiceNumber, reason),
		IsLocked:          true,
		LockedAt:          &now,
		SentAt:            &now,
		CorrectionType:    &correctionType,
		CorrectsID:        &inv.ID,
	}

	correction.Items = make([]InvoiceItem, 0, len(lines))
	for idx, line := range lines {
		item, err := NewInvoiceItem(correction.ID, korrekturItemPrefix+line.Description, line.Unit, line.Quantity, line.UnitPrice, line.VATRate)
		if err != nil {
			return nil, err
		}
		item.Position = idx + 1
		correction.Items = append(correction.Items, *item)
	}
	correction.recalculateTotals()

	correction.AddDomainEvent(NewCorrectionCreatedEvent(correction, inv))

	return correction, nil
}

// MarkCorrected links this invoice to its correction document
func (inv *Invoice) MarkCorrected(correctionID uuid.UUID, now time.Time) error {
	if inv.CorrectedByID != nil {
		return shared.NewDomainError("ALREADY_CORRECTED", "Invoice already has a correction document")
	}

	inv.CorrectedByID = &correctionID
	inv.UpdatedAt = now

	inv.AddDomainEvent(NewInvoiceCorrectedEvent(inv, correctionID))

	return nil
}
