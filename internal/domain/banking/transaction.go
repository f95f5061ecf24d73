package banking

import (
	"fmt"
	"strings"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/buchmeister/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one booked bank transaction. Transactions are
// append-only: imports create them, the duplicate sweep may delete
// redundant copies, but amounts and dates are never edited.
type Transaction struct {
	shared.BaseEntity
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BookingDate  time.Time       `gorm:"not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency     string          `gorm:"not null;default:EUR"`
	Description  string          `gorm:"not null"`
	Counterparty string
	// ExternalID is the bank's own transaction identifier, when the
	// source provides one. Unique per account.
	ExternalID *string `gorm:"index"`
	// CSVRowHash fingerprints the raw CSV row the transaction came from
	CSVRowHash *string `gorm:"index"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "bank_transactions"
}

// NewTransaction creates a new bank transaction
func NewTransaction(accountID uuid.UUID, bookingDate time.Time, amount decimal.Decimal, currency, description, counterparty string) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Description cannot be empty")
	}
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}

	return &Transaction{
		BaseEntity:   shared.NewBaseEntity(),
		AccountID:    accountID,
		BookingDate:  bookingDate,
		Amount:       amount,
		Currency:     currency,
		Description:  strings.TrimSpace(description),
		Counterparty: strings.TrimSpace(counterparty),
	}, nil
}

// SetExternalID records the bank-side identifier
func (tx *Transaction) SetExternalID(externalID string) {
	externalID = strings.TrimSpace(externalID)
	if externalID != "" {
		tx.ExternalID = &externalID
	}
}

// SetRowHash records the CSV row fingerprint
func (tx *Transaction) SetRowHash(hash string) {
	if hash != "" {
		tx.CSVRowHash = &hash
	}
}

// Money returns the transaction amount as a Money value object
func (tx *Transaction) Money() valueobject.Money {
	m, err := valueobject.NewMoney(tx.Amount, valueobject.Currency(tx.Currency))
	if err != nil {
		return valueobject.NewMoneyEUR(tx.Amount)
	}
	return m
}

// ContentKey identifies transactions that describe the same booking:
// date, amount, description and counterparty, independent of how the
// source formatted them.
func (tx *Transaction) ContentKey() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		tx.BookingDate.Format("2006-01-02"),
		tx.Amount.String(),
		tx.Description,
		tx.Counterparty,
	)
}
