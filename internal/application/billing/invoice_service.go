package billing

import (
	"context"
	"strings"
	"time"

	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/partner"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService orchestrates the invoice lifecycle
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo partner.CustomerRepository
	numbers      *appnumbering.Service
	scope        TransactionScope
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	numbers *appnumbering.Service,
	scope TransactionScope,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		numbers:      numbers,
		scope:        scope,
	}
}

// InvoiceItemRequest is one line item in a create or update request
type InvoiceItemRequest struct {
	Description string           `json:"description" binding:"required"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	Unit        string           `json:"unit"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	VATRate     *decimal.Decimal `json:"vat_rate"`
}

func (r InvoiceItemRequest) vatRate() decimal.Decimal {
	if r.VATRate != nil {
		return *r.VATRate
	}
	return billing.DefaultVATRate
}

// CreateInvoiceRequest is the request to create a draft invoice
type CreateInvoiceRequest struct {
	CustomerID   uuid.UUID            `json:"customer_id" binding:"required"`
	InvoiceDate  *time.Time           `json:"invoice_date"`
	DueDate      *time.Time           `json:"due_date"`
	PaymentTerms string               `json:"payment_terms"`
	Notes        string               `json:"notes"`
	Items        []InvoiceItemRequest `json:"items"`
}

// CreateInvoice creates a draft invoice with a freshly drawn invoice
// number. Number draw and invoice insert share one transaction so a
// failed insert cannot burn a number.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	invoiceDate := time.Now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}
	dueDate := invoiceDate.AddDate(0, 0, billing.DefaultPaymentDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	var created *billing.Invoice
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := s.numbers.NextNumberWith(ctx, repos.SequenceRepo(), numbering.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		inv, err := billing.NewInvoice(number, customer.ID, customer.Name, invoiceDate, dueDate)
		if err != nil {
			return err
		}
		if req.PaymentTerms != "" {
			if err := inv.SetPaymentTerms(req.PaymentTerms); err != nil {
				return err
			}
		}
		if req.Notes != "" {
			if err := inv.SetNotes(req.Notes); err != nil {
				return err
			}
		}
		for _, item := range req.Items {
			if _, err := inv.AddItem(item.Description, item.Unit, item.Quantity, item.UnitPrice, item.vatRate()); err != nil {
				return err
			}
		}

		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetInvoice loads one invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

// ListInvoices returns a page of invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &page, nil
}

// UpdateInvoiceRequest is the request to update a draft invoice.
// Nil fields are left unchanged; a non-nil Items slice replaces all items.
type UpdateInvoiceRequest struct {
	DueDate      *time.Time            `json:"due_date"`
	PaymentTerms *string               `json:"payment_terms"`
	Notes        *string               `json:"notes"`
	Items        *[]InvoiceItemRequest `json:"items"`
}

// UpdateDraftInvoice updates a draft invoice. Locked invoices are
// rejected; amendments happen through cancellation or correction.
func (s *InvoiceService) UpdateDraftInvoice(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*billing.Invoice, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.CanModify() {
		return nil, shared.NewDomainError("DOCUMENT_LOCKED", "Invoice is locked and cannot be edited. Create a cancellation or correction invoice instead.")
	}

	if req.DueDate != nil {
		inv.DueDate = *req.DueDate
	}
	if req.PaymentTerms != nil {
		if err := inv.SetPaymentTerms(*req.PaymentTerms); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if err := inv.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		for _, existing := range append([]billing.InvoiceItem(nil), inv.Items...) {
			if err := inv.RemoveItem(existing.ID); err != nil {
				return nil, err
			}
		}
		for _, item := range *req.Items {
			if _, err := inv.AddItem(item.Description, item.Unit, item.Quantity, item.UnitPrice, item.vatRate()); err != nil {
				return nil, err
			}
		}
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// SendInvoice issues the invoice, locking it permanently
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Send(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// MarkPaidRequest records a payment against an invoice
type MarkPaidRequest struct {
	PaidAt     *time.Time       `json:"paid_at"`
	PaidAmount *decimal.Decimal `json:"paid_amount"`
}

// MarkInvoicePaid records payment of an invoice
func (s *InvoiceService) MarkInvoicePaid(ctx context.Context, id uuid.UUID, req MarkPaidRequest) (*billing.Invoice, error) {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.MarkPaid(req.PaidAt, req.PaidAmount); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// DeleteInvoice removes a draft invoice. Locked or sent invoices can
// only be neutralized by a cancellation document.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	inv, err := s.GetInvoice(ctx, id)
	if err != nil {
		return err
	}
	if !inv.CanBeDeleted() {
		return shared.NewDomainError("DOCUMENT_LOCKED", "Only draft invoices can be deleted. Create a cancellation invoice instead.")
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// CancelInvoice creates a Storno document for a locked invoice and flags
// the original as cancelled. Both writes happen in one transaction, and
// the Storno draws its own number from the invoice sequence.
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID, reason string) (*billing.Invoice, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cancellation reason is required")
	}

	var storno *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return shared.ErrNotFound
		}

		now := time.Now()
		number, err := s.numbers.NextNumberWith(ctx, repos.SequenceRepo(), numbering.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		doc, err := inv.BuildCancellation(number, reason, now)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, doc); err != nil {
			return err
		}

		if err := inv.MarkCancelled(doc.ID, reason, now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}

		storno = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return storno, nil
}

// CorrectionRequest describes the differential positions of a correction
type CorrectionRequest struct {
	Reason string               `json:"reason" binding:"required"`
	Items  []InvoiceItemRequest `json:"items" binding:"required,min=1"`
}

// CorrectInvoice creates a Korrektur document for a locked invoice. Each
// invoice can be corrected once; the link and the new document are
// persisted in one transaction.
func (s *InvoiceService) CorrectInvoice(ctx context.Context, id uuid.UUID, req CorrectionRequest) (*billing.Invoice, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Correction reason is required")
	}

	lines := make([]billing.CorrectionLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, billing.CorrectionLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			VATRate:     item.vatRate(),
		})
	}

	var correction *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return shared.ErrNotFound
		}

		now := time.Now()
		number, err := s.numbers.NextNumberWith(ctx, repos.SequenceRepo(), numbering.DocumentTypeInvoice)
		if err != nil {
			return err
		}

		doc, err := inv.BuildCorrection(number, req.Reason, lines, now)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, doc); err != nil {
			return err
		}

		if err := inv.MarkCorrected(doc.ID, now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}

		correction = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return correction, nil
}
