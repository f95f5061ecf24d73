package banking

import (
	"context"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BankAccountRepository defines persistence operations for bank accounts
type BankAccountRepository interface {
	shared.Repository[BankAccount]
	FindByIBAN(ctx context.Context, iban string) (*BankAccount, error)
}

// TransactionRepository defines persistence operations for transactions.
// It doubles as the DuplicateLookup used by the duplicate strategies.
type TransactionRepository interface {
	shared.Repository[Transaction]
	DuplicateLookup
	FindByAccountID(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Transaction, error)
	SaveAll(ctx context.Context, transactions []*Transaction) error
	// FindAllOrderedByCreation returns every transaction ordered by
	// created_at ascending, for the duplicate sweep
	FindAllOrderedByCreation(ctx context.Context) ([]Transaction, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// AttachmentRepository defines persistence operations for transaction
// attachments
type AttachmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionAttachment, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]TransactionAttachment, error)
	Save(ctx context.Context, attachment *TransactionAttachment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
