package persistence

import (
	"context"
	"errors"

	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var invoiceSortable = map[string]bool{
	"invoice_number": true,
	"invoice_date":   true,
	"due_date":       true,
	"total_gross":    true,
	"status":         true,
	"created_at":     true,
}

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its items. Returns nil when not found.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).Preload("Items").First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its document number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).Preload("Items").First(&invoice, "invoice_number = ?", invoiceNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByQuoteID finds the invoice created from the given quote
func (r *GormInvoiceRepository) FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).Preload("Items").First(&invoice, "quote_id = ?", quoteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByCustomerID finds all invoices of one customer
func (r *GormInvoiceRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerID)
	query = applyPagination(query, filter, invoiceSortable, "invoice_date DESC, created_at DESC")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Preload("Items"), filter)
	query = applyPagination(query, filter, invoiceSortable, "invoice_date DESC, created_at DESC")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice and synchronizes its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		return syncInvoiceItems(tx, invoice)
	})
}

// SaveWithLock updates an invoice with an optimistic version check. A
// concurrent writer that got there first makes the update a no-op and
// surfaces a conflict.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	current := invoice.Version
	invoice.IncrementVersion()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, current).
			Select("*").Omit("Items", "CreatedAt").
			Updates(invoice)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return syncInvoiceItems(tx, invoice)
	})
	if err != nil {
		invoice.Version = current
		return err
	}
	return nil
}

// Delete removes an invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "is_locked":
			query = query.Where("is_locked = ?", value)
		case "is_cancelled":
			query = query.Where("is_cancelled = ?", value)
		case "correction_type":
			query = query.Where("correction_type = ?", value)
		}
	}
	return query
}

// syncInvoiceItems upserts the current items and deletes rows that were
// removed from the aggregate
func syncInvoiceItems(tx *gorm.DB, invoice *billing.Invoice) error {
	keep := make([]uuid.UUID, 0, len(invoice.Items))
	for i := range invoice.Items {
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
		keep = append(keep, invoice.Items[i].ID)
	}

	query := tx.Where("invoice_id = ?", invoice.ID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(&billing.InvoiceItem{}).Error
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
