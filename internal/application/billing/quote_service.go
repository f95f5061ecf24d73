package billing

import (
	"context"
	"time"

	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/partner"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QuoteService orchestrates quotes and their conversion into invoices
type QuoteService struct {
	quoteRepo    billing.QuoteRepository
	invoiceRepo  billing.InvoiceRepository
	customerRepo partner.CustomerRepository
	numbers      *appnumbering.Service
	scope        TransactionScope
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo billing.QuoteRepository,
	invoiceRepo billing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	numbers *appnumbering.Service,
	scope TransactionScope,
) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		numbers:      numbers,
		scope:        scope,
	}
}

// CreateQuoteRequest is the request to create a draft quote
type CreateQuoteRequest struct {
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	QuoteDate  *time.Time           `json:"quote_date"`
	ValidUntil *time.Time           `json:"valid_until"`
	Notes      string               `json:"notes"`
	Items      []InvoiceItemRequest `json:"items"`
}

// CreateQuote creates a draft quote with a freshly drawn quote number
func (s *QuoteService) CreateQuote(ctx context.Context, req CreateQuoteRequest) (*billing.Quote, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	quoteDate := time.Now()
	if req.QuoteDate != nil {
		quoteDate = *req.QuoteDate
	}
	validUntil := quoteDate.AddDate(0, 1, 0)
	if req.ValidUntil != nil {
		validUntil = *req.ValidUntil
	}

	var created *billing.Quote
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := s.numbers.NextNumberWith(ctx, repos.SequenceRepo(), numbering.DocumentTypeQuote)
		if err != nil {
			return err
		}

		quote, err := billing.NewQuote(number, customer.ID, customer.Name, quoteDate, validUntil)
		if err != nil {
			return err
		}
		quote.Notes = req.Notes
		for _, item := range req.Items {
			if _, err := quote.AddItem(item.Description, item.Unit, item.Quantity, item.UnitPrice, item.vatRate()); err != nil {
				return err
			}
		}

		if err := repos.QuoteRepo().Save(ctx, quote); err != nil {
			return err
		}
		created = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetQuote loads one quote by ID
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, shared.ErrNotFound
	}
	return quote, nil
}

// ListQuotes returns a page of quotes
func (s *QuoteService) ListQuotes(ctx context.Context, filter shared.Filter) (*shared.Paginated[billing.Quote], error) {
	quotes, err := s.quoteRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.quoteRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(quotes, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateQuoteRequest is the request to update a draft quote.
// Nil fields are left unchanged; a non-nil Items slice replaces all items.
type UpdateQuoteRequest struct {
	ValidUntil *time.Time            `json:"valid_until"`
	Notes      *string               `json:"notes"`
	Items      *[]InvoiceItemRequest `json:"items"`
}

// UpdateDraftQuote updates a draft quote. Sent and decided quotes are
// rejected.
func (s *QuoteService) UpdateDraftQuote(ctx context.Context, id uuid.UUID, req UpdateQuoteRequest) (*billing.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !quote.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft quotes can be edited")
	}

	if req.ValidUntil != nil {
		quote.ValidUntil = *req.ValidUntil
		quote.UpdatedAt = time.Now()
	}
	if req.Notes != nil {
		quote.Notes = *req.Notes
		quote.UpdatedAt = time.Now()
	}
	if req.Items != nil {
		for _, existing := range append([]billing.QuoteItem(nil), quote.Items...) {
			if err := quote.RemoveItem(existing.ID); err != nil {
				return nil, err
			}
		}
		for _, item := range *req.Items {
			if _, err := quote.AddItem(item.Description, item.Unit, item.Quantity, item.UnitPrice, item.vatRate()); err != nil {
				return nil, err
			}
		}
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// SendQuote marks the quote as sent
func (s *QuoteService) SendQuote(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quote.Send(); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// AcceptQuote marks the quote as accepted
func (s *QuoteService) AcceptQuote(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quote.Accept(time.Now()); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// RejectQuote marks the quote as rejected
func (s *QuoteService) RejectQuote(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := quote.Reject(time.Now()); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// DeleteQuote removes a draft quote
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	quote, err := s.GetQuote(ctx, id)
	if err != nil {
		return err
	}
	if !quote.CanModify() {
		return shared.NewDomainError("INVALID_STATE", "Only draft quotes can be deleted")
	}
	return s.quoteRepo.Delete(ctx, id)
}

// ConversionResult is the outcome of a quote conversion
type ConversionResult struct {
	Invoice          *billing.Invoice
	AlreadyConverted bool
}

// ConvertQuote turns an accepted or sent quote into a draft invoice.
// Conversion is idempotent: if an invoice already references the quote,
// that invoice is returned and no new number is drawn.
func (s *QuoteService) ConvertQuote(ctx context.Context, quoteID uuid.UUID) (*ConversionResult, error) {
	existing, err := s.invoiceRepo.FindByQuoteID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ConversionResult{Invoice: existing, AlreadyConverted: true}, nil
	}

	var result ConversionResult
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Re-check inside the transaction; a concurrent conversion may
		// have won the race since the fast path above.
		existing, err := repos.InvoiceRepo().FindByQuoteID(ctx, quoteID)
		if err != nil {
			return err
		}
		if existing != nil {
			result = ConversionResult{Invoice: existing, AlreadyConverted: true}
			return nil
		}

		quote, err := repos.QuoteRepo().FindByID(ctx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return shared.ErrNotFound
		}

		number, err := s.numbers.NextNumberWith(ctx, repos.SequenceRepo(), numbering.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		inv, err := quote.ConvertToInvoice(number, time.Now())
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		if err := repos.QuoteRepo().SaveWithLock(ctx, quote); err != nil {
			return err
		}

		result = ConversionResult{Invoice: inv}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
