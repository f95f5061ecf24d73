package billing

import (
	"context"

	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/numbering"
)

// TransactionScope provides transactional access to billing repositories.
// Drawing a document number and persisting the document that consumes it
// must commit or roll back together, otherwise the sequence would gap.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within one transaction. All returned repositories share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// QuoteRepo returns the quote repository scoped to the current transaction
	QuoteRepo() billing.QuoteRepository
	// SequenceRepo returns the document sequence repository scoped to the current transaction
	SequenceRepo() numbering.SequenceRepository
}

// NoOpTransactionScope is a transaction scope without real transactions,
// for tests and callers that bring their own atomicity.
type NoOpTransactionScope struct {
	invoiceRepo  billing.InvoiceRepository
	quoteRepo    billing.QuoteRepository
	sequenceRepo numbering.SequenceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	quoteRepo billing.QuoteRepository,
	sequenceRepo numbering.SequenceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:  invoiceRepo,
		quoteRepo:    quoteRepo,
		sequenceRepo: sequenceRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// QuoteRepo returns the quote repository.
func (s *NoOpTransactionScope) QuoteRepo() billing.QuoteRepository {
	return s.quoteRepo
}

// SequenceRepo returns the document sequence repository.
func (s *NoOpTransactionScope) SequenceRepo() numbering.SequenceRepository {
	return s.sequenceRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
