package billing

import (
	"context"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	shared.Repository[Invoice]
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	// FindByQuoteID returns the invoice created from the given quote,
	// or nil if the quote has not been converted
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*Invoice, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	// SaveWithLock saves using optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// QuoteRepository defines persistence operations for quotes
type QuoteRepository interface {
	shared.Repository[Quote]
	FindByNumber(ctx context.Context, quoteNumber string) (*Quote, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Quote, error)
	SaveWithLock(ctx context.Context, quote *Quote) error
}
