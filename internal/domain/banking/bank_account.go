package banking

import (
	"strings"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/buchmeister/backend/internal/domain/shared/valueobject"
)

// BankAccount is the aggregate root for a registered bank account.
// Imported transactions always belong to exactly one account.
type BankAccount struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"not null"`
	IBAN     string `gorm:"not null;uniqueIndex"`
	BIC      string
	BankName string
	Currency string `gorm:"not null;default:EUR"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// NewBankAccount creates a new bank account
func NewBankAccount(name, iban, bic, bankName string) (*BankAccount, error) {
	name = strings.TrimSpace(name)
	iban = strings.ToUpper(strings.ReplaceAll(iban, " ", ""))

	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if len(iban) < 15 || len(iban) > 34 {
		return nil, shared.NewDomainError("INVALID_IBAN", "IBAN must be between 15 and 34 characters")
	}

	return &BankAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IBAN:              iban,
		BIC:               strings.TrimSpace(bic),
		BankName:          strings.TrimSpace(bankName),
		Currency:          string(valueobject.DefaultCurrency),
	}, nil
}

// Rename updates the display name of the account
func (a *BankAccount) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	return nil
}
