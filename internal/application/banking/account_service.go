package banking

import (
	"context"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountService manages the registered bank accounts
type AccountService struct {
	accountRepo banking.BankAccountRepository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo banking.BankAccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccountRequest is the request to register a bank account
type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required"`
	IBAN     string `json:"iban" binding:"required"`
	BIC      string `json:"bic"`
	BankName string `json:"bank_name"`
}

// CreateAccount registers a bank account. The IBAN must be unique.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*banking.BankAccount, error) {
	account, err := banking.NewBankAccount(req.Name, req.IBAN, req.BIC, req.BankName)
	if err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.FindByIBAN(ctx, account.IBAN)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("IBAN_EXISTS", "A bank account with this IBAN already exists")
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount loads one bank account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.ErrNotFound
	}
	return account, nil
}

// ListAccounts returns a page of bank accounts
func (s *AccountService) ListAccounts(ctx context.Context, filter shared.Filter) (*shared.Paginated[banking.BankAccount], error) {
	accounts, err := s.accountRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(accounts, total, filter.Page, filter.PageSize)
	return &page, nil
}

// RenameAccount changes the display name of an account
func (s *AccountService) RenameAccount(ctx context.Context, id uuid.UUID, name string) (*banking.BankAccount, error) {
	account, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := account.Rename(name); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
