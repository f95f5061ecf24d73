package banking

import (
	"context"
	"time"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService manages individual bank transactions and the
// retroactive duplicate sweep
type TransactionService struct {
	accountRepo     banking.BankAccountRepository
	transactionRepo banking.TransactionRepository
	checker         *banking.DuplicateChecker
}

// NewTransactionService creates a new transaction service
func NewTransactionService(accountRepo banking.BankAccountRepository, transactionRepo banking.TransactionRepository) *TransactionService {
	return &TransactionService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		checker:         banking.NewDuplicateChecker(transactionRepo),
	}
}

// RecordTransactionRequest is the request to record a single transaction
type RecordTransactionRequest struct {
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	BookingDate  time.Time       `json:"booking_date" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description" binding:"required"`
	Counterparty string          `json:"counterparty"`
	ExternalID   string          `json:"external_id"`
}

func (r RecordTransactionRequest) candidate() banking.TransactionCandidate {
	return banking.TransactionCandidate{
		AccountID:    r.AccountID,
		BookingDate:  r.BookingDate,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Description:  r.Description,
		Counterparty: r.Counterparty,
		ExternalID:   r.ExternalID,
	}
}

// RecordResult is the outcome of recording a transaction. When the
// duplicate check hits, Transaction is the stored original.
type RecordResult struct {
	Transaction *banking.Transaction  `json:"transaction"`
	Duplicate   bool                  `json:"duplicate"`
	Strategy    banking.MatchStrategy `json:"strategy,omitempty"`
}

// RecordTransaction stores one manually entered transaction. Recording
// is idempotent: a duplicate returns the stored transaction instead of
// creating a second copy.
func (s *TransactionService) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*RecordResult, error) {
	account, err := s.accountRepo.FindByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Bank account not found")
	}

	match, err := s.checker.Check(ctx, req.candidate())
	if err != nil {
		return nil, err
	}
	if match.Duplicate {
		existing, err := s.transactionRepo.FindByID(ctx, match.ExistingID)
		if err != nil {
			return nil, err
		}
		return &RecordResult{Transaction: existing, Duplicate: true, Strategy: match.Strategy}, nil
	}

	currency := req.Currency
	if currency == "" {
		currency = account.Currency
	}
	tx, err := banking.NewTransaction(req.AccountID, req.BookingDate, req.Amount, currency, req.Description, req.Counterparty)
	if err != nil {
		return nil, err
	}
	tx.SetExternalID(req.ExternalID)
	tx.SetRowHash(req.candidate().RowHash())

	if err := s.transactionRepo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return &RecordResult{Transaction: tx}, nil
}

// GetTransaction loads one transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*banking.Transaction, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.ErrNotFound
	}
	return tx, nil
}

// ListTransactions returns a page of transactions for one account
func (s *TransactionService) ListTransactions(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]banking.Transaction, error) {
	return s.transactionRepo.FindByAccountID(ctx, accountID, filter)
}

// CheckDuplicate tests a candidate against the stored transactions
// without persisting anything
func (s *TransactionService) CheckDuplicate(ctx context.Context, req RecordTransactionRequest) (banking.DuplicateMatch, error) {
	return s.checker.Check(ctx, req.candidate())
}

// SweepDuplicates scans all stored transactions and deletes redundant
// copies of earlier bookings. The oldest row of each group survives.
func (s *TransactionService) SweepDuplicates(ctx context.Context) (*banking.SweepResult, error) {
	transactions, err := s.transactionRepo.FindAllOrderedByCreation(ctx)
	if err != nil {
		return nil, err
	}

	result := banking.BuildSweepPlan(transactions)
	if len(result.DeleteIDs) > 0 {
		if err := s.transactionRepo.DeleteByIDs(ctx, result.DeleteIDs); err != nil {
			return nil, err
		}
	}
	return &result, nil
}
