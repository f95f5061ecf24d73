package persistence

import (
	"context"
	"errors"

	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var quoteSortable = map[string]bool{
	"quote_number": true,
	"quote_date":   true,
	"valid_until":  true,
	"total_gross":  true,
	"status":       true,
	"created_at":   true,
}

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote with its items. Returns nil when not found.
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	var quote billing.Quote
	err := r.db.WithContext(ctx).Preload("Items").First(&quote, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// FindByNumber finds a quote by its document number
func (r *GormQuoteRepository) FindByNumber(ctx context.Context, quoteNumber string) (*billing.Quote, error) {
	var quote billing.Quote
	err := r.db.WithContext(ctx).Preload("Items").First(&quote, "quote_number = ?", quoteNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// FindByCustomerID finds all quotes of one customer
func (r *GormQuoteRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]billing.Quote, error) {
	var quotes []billing.Quote
	query := r.db.WithContext(ctx).Preload("Items").Where("customer_id = ?", customerID)
	query = applyPagination(query, filter, quoteSortable, "quote_date DESC, created_at DESC")
	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindAll finds all quotes matching the filter
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Quote, error) {
	var quotes []billing.Quote
	query := r.applyFilter(r.db.WithContext(ctx).Preload("Items"), filter)
	query = applyPagination(query, filter, quoteSortable, "quote_date DESC, created_at DESC")
	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Save creates or updates a quote and synchronizes its items
func (r *GormQuoteRepository) Save(ctx context.Context, quote *billing.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(quote).Error; err != nil {
			return err
		}
		return syncQuoteItems(tx, quote)
	})
}

// SaveWithLock updates a quote with an optimistic version check
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, quote *billing.Quote) error {
	current := quote.Version
	quote.IncrementVersion()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&billing.Quote{}).
			Where("id = ? AND version = ?", quote.ID, current).
			Select("*").Omit("Items", "CreatedAt").
			Updates(quote)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return syncQuoteItems(tx, quote)
	})
	if err != nil {
		quote.Version = current
		return err
	}
	return nil
}

// Delete removes a quote and its items
func (r *GormQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&billing.QuoteItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Quote{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts quotes matching the filter
func (r *GormQuoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Quote{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormQuoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("quote_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return query
}

func syncQuoteItems(tx *gorm.DB, quote *billing.Quote) error {
	keep := make([]uuid.UUID, 0, len(quote.Items))
	for i := range quote.Items {
		if err := tx.Save(&quote.Items[i]).Error; err != nil {
			return err
		}
		keep = append(keep, quote.Items[i].ID)
	}

	query := tx.Where("quote_id = ?", quote.ID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(&billing.QuoteItem{}).Error
}

// Ensure GormQuoteRepository implements QuoteRepository
var _ billing.QuoteRepository = (*GormQuoteRepository)(nil)
