package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var transactionSortable = map[string]bool{
	"booking_date": true,
	"amount":       true,
	"created_at":   true,
}

// GormTransactionRepository implements TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by ID. Returns nil when not found.
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.Transaction, error) {
	var tx banking.Transaction
	err := r.db.WithContext(ctx).First(&tx, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindAll finds all transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]banking.Transaction, error) {
	var transactions []banking.Transaction
	query := r.db.WithContext(ctx).Model(&banking.Transaction{})
	query = applyPagination(query, filter, transactionSortable, "booking_date DESC, created_at DESC")
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindByAccountID finds all transactions of one account
func (r *GormTransactionRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]banking.Transaction, error) {
	var transactions []banking.Transaction
	query := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	query = applyPagination(query, filter, transactionSortable, "booking_date DESC, created_at DESC")
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, tx *banking.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// SaveAll stores a batch of transactions in one insert
func (r *GormTransactionRepository) SaveAll(ctx context.Context, transactions []*banking.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(transactions, 500).Error
}

// FindAllOrderedByCreation returns every transaction ordered by
// created_at ascending, for the duplicate sweep
func (r *GormTransactionRepository) FindAllOrderedByCreation(ctx context.Context) ([]banking.Transaction, error) {
	var transactions []banking.Transaction
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Delete removes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&banking.Transaction{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes a batch of transactions
func (r *GormTransactionRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&banking.Transaction{}, "id IN ?", ids).Error
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&banking.Transaction{})
	if accountID, ok := filter.Filters["account_id"]; ok {
		query = query.Where("account_id = ?", accountID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByExternalID finds a transaction by the bank-side identifier
func (r *GormTransactionRepository) FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*banking.Transaction, error) {
	var tx banking.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND external_id = ?", accountID, externalID).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByRowHash finds a transaction by its CSV row fingerprint
func (r *GormTransactionRepository) FindByRowHash(ctx context.Context, accountID uuid.UUID, hash string) (*banking.Transaction, error) {
	var tx banking.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND csv_row_hash = ?", accountID, hash).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByContent finds a transaction with the same booking date, amount
// and description
func (r *GormTransactionRepository) FindByContent(ctx context.Context, accountID uuid.UUID, bookingDate time.Time, amount decimal.Decimal, description string) (*banking.Transaction, error) {
	dayStart := time.Date(bookingDate.Year(), bookingDate.Month(), bookingDate.Day(), 0, 0, 0, 0, bookingDate.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var tx banking.Transaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND booking_date >= ? AND booking_date < ? AND amount = ? AND description = ?",
			accountID, dayStart, dayEnd, amount, description).
		First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListExternalIDs returns the subset of the given external IDs that
// already exist for the account
func (r *GormTransactionRepository) ListExternalIDs(ctx context.Context, accountID uuid.UUID, externalIDs []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(externalIDs) == 0 {
		return found, nil
	}

	var existing []string
	err := r.db.WithContext(ctx).Model(&banking.Transaction{}).
		Where("account_id = ? AND external_id IN ?", accountID, externalIDs).
		Pluck("external_id", &existing).Error
	if err != nil {
		return nil, err
	}
	for _, id := range existing {
		found[id] = struct{}{}
	}
	return found, nil
}

// ListRowHashes returns the subset of the given row hashes that already
// exist for the account
func (r *GormTransactionRepository) ListRowHashes(ctx context.Context, accountID uuid.UUID, hashes []string) (map[string]struct{}, error) {
	found := make(map[string]struct{})
	if len(hashes) == 0 {
		return found, nil
	}

	var existing []string
	err := r.db.WithContext(ctx).Model(&banking.Transaction{}).
		Where("account_id = ? AND csv_row_hash IN ?", accountID, hashes).
		Pluck("csv_row_hash", &existing).Error
	if err != nil {
		return nil, err
	}
	for _, hash := range existing {
		found[hash] = struct{}{}
	}
	return found, nil
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ banking.TransactionRepository = (*GormTransactionRepository)(nil)
