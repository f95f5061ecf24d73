package persistence

import (
	"context"

	appbilling "github.com/buchmeister/backend/internal/application/billing"
	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/numbering"
	"gorm.io/gorm"
)

// GormTransactionScope implements the billing TransactionScope using
// GORM transactions. Number draw and document write commit together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// InvoiceRepo returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// QuoteRepo returns the quote repository scoped to the current transaction
func (r *gormTransactionalRepositories) QuoteRepo() billing.QuoteRepository {
	return NewGormQuoteRepository(r.tx)
}

// SequenceRepo returns the document sequence repository scoped to the current transaction
func (r *gormTransactionalRepositories) SequenceRepo() numbering.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
