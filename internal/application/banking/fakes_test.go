package banking

import (
	"context"
	"time"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeAccountRepository is an in-memory BankAccountRepository
type fakeAccountRepository struct {
	accounts map[uuid.UUID]*banking.BankAccount
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{accounts: make(map[uuid.UUID]*banking.BankAccount)}
}

func (r *fakeAccountRepository) FindByID(_ context.Context, id uuid.UUID) (*banking.BankAccount, error) {
	return r.accounts[id], nil
}

func (r *fakeAccountRepository) FindAll(_ context.Context, _ shared.Filter) ([]banking.BankAccount, error) {
	out := make([]banking.BankAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAccountRepository) Save(_ context.Context, account *banking.BankAccount) error {
	r.accounts[account.ID] = account
	return nil
}

func (r *fakeAccountRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.accounts)), nil
}

func (r *fakeAccountRepository) FindByIBAN(_ context.Context, iban string) (*banking.BankAccount, error) {
	for _, a := range r.accounts {
		if a.IBAN == iban {
			return a, nil
		}
	}
	return nil, nil
}

var _ banking.BankAccountRepository = (*fakeAccountRepository)(nil)

// fakeTransactionRepository is an in-memory TransactionRepository that
// keeps insertion order, standing in for created_at ordering
type fakeTransactionRepository struct {
	transactions []*banking.Transaction
	contentCalls int
}

func newFakeTransactionRepository() *fakeTransactionRepository {
	return &fakeTransactionRepository{}
}

func (r *fakeTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*banking.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepository) FindAll(_ context.Context, _ shared.Filter) ([]banking.Transaction, error) {
	return r.copyAll(), nil
}

func (r *fakeTransactionRepository) Save(_ context.Context, tx *banking.Transaction) error {
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeTransactionRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.DeleteByIDs(context.Background(), []uuid.UUID{id})
}

func (r *fakeTransactionRepository) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.transactions)), nil
}

func (r *fakeTransactionRepository) FindByAccountID(_ context.Context, accountID uuid.UUID, _ shared.Filter) ([]banking.Transaction, error) {
	var out []banking.Transaction
	for _, tx := range r.transactions {
		if tx.AccountID == accountID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepository) SaveAll(_ context.Context, transactions []*banking.Transaction) error {
	r.transactions = append(r.transactions, transactions...)
	return nil
}

func (r *fakeTransactionRepository) FindAllOrderedByCreation(_ context.Context) ([]banking.Transaction, error) {
	return r.copyAll(), nil
}

func (r *fakeTransactionRepository) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	doomed := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}
	kept := r.transactions[:0]
	for _, tx := range r.transactions {
		if _, ok := doomed[tx.ID]; !ok {
			kept = append(kept, tx)
		}
	}
	r.transactions = kept
	return nil
}

func (r *fakeTransactionRepository) FindByExternalID(_ context.Context, accountID uuid.UUID, externalID string) (*banking.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.AccountID == accountID && tx.ExternalID != nil && *tx.ExternalID == externalID {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepository) FindByRowHash(_ context.Context, accountID uuid.UUID, hash string) (*banking.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.AccountID == accountID && tx.CSVRowHash != nil && *tx.CSVRowHash == hash {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepository) FindByContent(_ context.Context, accountID uuid.UUID, bookingDate time.Time, amount decimal.Decimal, description string) (*banking.Transaction, error) {
	r.contentCalls++
	for _, tx := range r.transactions {
		if tx.AccountID == accountID &&
			tx.BookingDate.Format("2006-01-02") == bookingDate.Format("2006-01-02") &&
			tx.Amount.Equal(amount) &&
			tx.Description == description {
			return tx, nil
		}
	}
	return nil, nil
}

func (r *fakeTransactionRepository) ListExternalIDs(_ context.Context, accountID uuid.UUID, externalIDs []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = struct{}{}
	}
	found := make(map[string]struct{})
	for _, tx := range r.transactions {
		if tx.AccountID != accountID || tx.ExternalID == nil {
			continue
		}
		if _, ok := wanted[*tx.ExternalID]; ok {
			found[*tx.ExternalID] = struct{}{}
		}
	}
	return found, nil
}

func (r *fakeTransactionRepository) ListRowHashes(_ context.Context, accountID uuid.UUID, hashes []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		wanted[h] = struct{}{}
	}
	found := make(map[string]struct{})
	for _, tx := range r.transactions {
		if tx.AccountID != accountID || tx.CSVRowHash == nil {
			continue
		}
		if _, ok := wanted[*tx.CSVRowHash]; ok {
			found[*tx.CSVRowHash] = struct{}{}
		}
	}
	return found, nil
}

func (r *fakeTransactionRepository) copyAll() []banking.Transaction {
	out := make([]banking.Transaction, 0, len(r.transactions))
	for _, tx := range r.transactions {
		out = append(out, *tx)
	}
	return out
}

var _ banking.TransactionRepository = (*fakeTransactionRepository)(nil)

// fakeAttachmentRepository is an in-memory AttachmentRepository
type fakeAttachmentRepository struct {
	attachments map[uuid.UUID]*banking.TransactionAttachment
}

func newFakeAttachmentRepository() *fakeAttachmentRepository {
	return &fakeAttachmentRepository{attachments: make(map[uuid.UUID]*banking.TransactionAttachment)}
}

func (r *fakeAttachmentRepository) FindByID(_ context.Context, id uuid.UUID) (*banking.TransactionAttachment, error) {
	return r.attachments[id], nil
}

func (r *fakeAttachmentRepository) FindByTransactionID(_ context.Context, transactionID uuid.UUID) ([]banking.TransactionAttachment, error) {
	var out []banking.TransactionAttachment
	for _, a := range r.attachments {
		if a.TransactionID == transactionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepository) Save(_ context.Context, attachment *banking.TransactionAttachment) error {
	r.attachments[attachment.ID] = attachment
	return nil
}

func (r *fakeAttachmentRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.attachments, id)
	return nil
}

var _ banking.AttachmentRepository = (*fakeAttachmentRepository)(nil)

// fakeObjectStorage is an in-memory ObjectStorage
type fakeObjectStorage struct {
	objects map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: make(map[string][]byte)}
}

func (s *fakeObjectStorage) Put(_ context.Context, key, _ string, data []byte) error {
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *fakeObjectStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return data, nil
}

func (s *fakeObjectStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

var _ ObjectStorage = (*fakeObjectStorage)(nil)
