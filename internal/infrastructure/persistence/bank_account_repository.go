package persistence

import (
	"context"
	"errors"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var accountSortable = map[string]bool{
	"name":       true,
	"bank_name":  true,
	"created_at": true,
}

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by ID. Returns nil when not found.
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	var account banking.BankAccount
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByIBAN finds a bank account by IBAN
func (r *GormBankAccountRepository) FindByIBAN(ctx context.Context, iban string) (*banking.BankAccount, error) {
	var account banking.BankAccount
	err := r.db.WithContext(ctx).First(&account, "iban = ?", iban).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// FindAll finds all bank accounts
func (r *GormBankAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]banking.BankAccount, error) {
	var accounts []banking.BankAccount
	query := r.db.WithContext(ctx).Model(&banking.BankAccount{})
	query = applyPagination(query, filter, accountSortable, "name ASC")
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *banking.BankAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// Delete removes a bank account
func (r *GormBankAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&banking.BankAccount{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts bank accounts
func (r *GormBankAccountRepository) Count(ctx context.Context, _ shared.Filter) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&banking.BankAccount{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormBankAccountRepository implements BankAccountRepository
var _ banking.BankAccountRepository = (*GormBankAccountRepository)(nil)
