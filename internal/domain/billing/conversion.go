package billing

import (
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ConvertToInvoice builds a draft invoice from this quote. Line items are
// copied verbatim including their computed amounts; nothing is repriced
// during conversion. The invoice is due in 14 days and references the
// quote, and the quote moves to accepted.
//
// Idempotency is enforced by the caller: if an invoice referencing this
// quote already exists, it must be returned instead of converting again.
func (q *Quote) ConvertToInvoice(invoiceNumber string, now time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if q.Status == QuoteStatusRejected {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot convert a rejected quote")
	}
	if len(q.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cannot convert a quote without items")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		CustomerID:        q.CustomerID,
		CustomerName:      q.CustomerName,
		InvoiceDate:       now,
		DueDate:           now.AddDate(0, 0, DefaultPaymentDays),
		Subtotal:          q.Subtotal,
		TotalVAT:          q.TotalVAT,
		TotalGross:        q.TotalGross,
		Currency:          q.Currency,
		Status:            InvoiceStatusDraft,
		PaymentTerms:      DefaultPaymentTerms,
		Notes:             q.Notes,
		QuoteID:           &q.ID,
	}

	inv.Items = make([]InvoiceItem, 0, len(q.Items))
	for _, qi := range q.Items {
		inv.Items = append(inv.Items, InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Position:    qi.Position,
			Description: qi.Description,
			Quantity:    qi.Quantity,
			Unit:        qi.Unit,
			UnitPrice:   qi.UnitPrice,
			VATRate:     qi.VATRate,
			Subtotal:    qi.Subtotal,
			VATAmount:   qi.VATAmount,
			Total:       qi.Total,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if q.Status != QuoteStatusAccepted {
		if err := q.Accept(now); err != nil {
			return nil, err
		}
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	q.AddDomainEvent(NewQuoteConvertedEvent(q, inv))

	return inv, nil
}
