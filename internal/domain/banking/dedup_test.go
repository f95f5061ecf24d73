package banking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup is an in-memory DuplicateLookup backed by stored transactions
type fakeLookup struct {
	transactions []Transaction
	contentCalls int
}

func (f *fakeLookup) FindByExternalID(_ context.Context, accountID uuid.UUID, externalID string) (*Transaction, error) {
	for i := range f.transactions {
		tx := &f.transactions[i]
		if tx.AccountID == accountID && tx.ExternalID != nil && *tx.ExternalID == externalID {
			return tx, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) FindByRowHash(_ context.Context, accountID uuid.UUID, hash string) (*Transaction, error) {
	for i := range f.transactions {
		tx := &f.transactions[i]
		if tx.AccountID == accountID && tx.CSVRowHash != nil && *tx.CSVRowHash == hash {
			return tx, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) FindByContent(_ context.Context, accountID uuid.UUID, bookingDate time.Time, amount decimal.Decimal, description string) (*Transaction, error) {
	f.contentCalls++
	for i := range f.transactions {
		tx := &f.transactions[i]
		if tx.AccountID == accountID && tx.BookingDate.Equal(bookingDate) && tx.Amount.Equal(amount) && tx.Description == description {
			return tx, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) ListExternalIDs(_ context.Context, accountID uuid.UUID, externalIDs []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(externalIDs))
	for _, id := range externalIDs {
		wanted[id] = struct{}{}
	}
	found := make(map[string]struct{})
	for i := range f.transactions {
		tx := &f.transactions[i]
		if tx.AccountID != accountID || tx.ExternalID == nil {
			continue
		}
		if _, ok := wanted[*tx.ExternalID]; ok {
			found[*tx.ExternalID] = struct{}{}
		}
	}
	return found, nil
}

func (f *fakeLookup) ListRowHashes(_ context.Context, accountID uuid.UUID, hashes []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		wanted[h] = struct{}{}
	}
	found := make(map[string]struct{})
	for i := range f.transactions {
		tx := &f.transactions[i]
		if tx.AccountID != accountID || tx.CSVRowHash == nil {
			continue
		}
		if _, ok := wanted[*tx.CSVRowHash]; ok {
			found[*tx.CSVRowHash] = struct{}{}
		}
	}
	return found, nil
}

var _ DuplicateLookup = (*fakeLookup)(nil)

func storedTransaction(t *testing.T, accountID uuid.UUID, date, amount, description, externalID, rawDate, rawAmount string) Transaction {
	t.Helper()
	bookingDate, err := ParseDate(date)
	require.NoError(t, err)
	parsed, err := ParseAmount(amount)
	require.NoError(t, err)

	tx, err := NewTransaction(accountID, bookingDate, parsed, "EUR", description, "")
	require.NoError(t, err)
	tx.SetExternalID(externalID)
	if rawDate != "" {
		tx.SetRowHash(RowHash(rawDate, rawAmount, description))
	}
	return *tx
}

func candidate(t *testing.T, accountID uuid.UUID, date, amount, description, externalID string) TransactionCandidate {
	t.Helper()
	bookingDate, err := ParseDate(date)
	require.NoError(t, err)
	parsed, err := ParseAmount(amount)
	require.NoError(t, err)
	return TransactionCandidate{
		AccountID:   accountID,
		BookingDate: bookingDate,
		Amount:      parsed,
		Description: description,
		ExternalID:  externalID,
		RawDate:     date,
		RawAmount:   amount,
	}
}

func TestGetStrategy(t *testing.T) {
	for _, name := range []MatchStrategy{MatchByExternalID, MatchByRowHash, MatchByContent} {
		strategy, err := GetStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, name, strategy.Name())
	}

	_, err := GetStrategy("FUZZY")
	assert.Error(t, err)
}

func TestDuplicateCheckerOrder(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("external id wins before anything else", func(t *testing.T) {
		lookup := &fakeLookup{transactions: []Transaction{
			storedTransaction(t, accountID, "15.01.2026", "-42,00", "REWE Markt", "bank-tx-1", "15.01.2026", "-42,00"),
		}}
		checker := NewDuplicateChecker(lookup)

		match, err := checker.Check(ctx, candidate(t, accountID, "15.01.2026", "-42,00", "REWE Markt", "bank-tx-1"))
		require.NoError(t, err)
		assert.True(t, match.Duplicate)
		assert.Equal(t, MatchByExternalID, match.Strategy)
		assert.Zero(t, lookup.contentCalls, "content query must not run after an external-id hit")
	})

	t.Run("row hash matches reimported csv row", func(t *testing.T) {
		lookup := &fakeLookup{transactions: []Transaction{
			storedTransaction(t, accountID, "15.01.2026", "-42,00", "REWE Markt", "", "15.01.2026", "-42,00"),
		}}
		checker := NewDuplicateChecker(lookup)

		match, err := checker.Check(ctx, candidate(t, accountID, "15.01.2026", "-42,00", "REWE Markt", ""))
		require.NoError(t, err)
		assert.True(t, match.Duplicate)
		assert.Equal(t, MatchByRowHash, match.Strategy)
	})

	t.Run("content match as last resort", func(t *testing.T) {
		stored := storedTransaction(t, accountID, "15.01.2026", "-42.00", "REWE Markt", "", "", "")
		lookup := &fakeLookup{transactions: []Transaction{stored}}
		checker := NewDuplicateChecker(lookup)

		// Different raw formatting, so the row hash differs, but the
		// parsed booking is identical.
		match, err := checker.Check(ctx, candidate(t, accountID, "2026-01-15", "-42,00 €", "REWE Markt", ""))
		require.NoError(t, err)
		assert.True(t, match.Duplicate)
		assert.Equal(t, MatchByContent, match.Strategy)
		assert.Equal(t, stored.ID, match.ExistingID)
	})

	t.Run("no match", func(t *testing.T) {
		lookup := &fakeLookup{}
		checker := NewDuplicateChecker(lookup)

		match, err := checker.Check(ctx, candidate(t, accountID, "15.01.2026", "-42,00", "REWE Markt", ""))
		require.NoError(t, err)
		assert.False(t, match.Duplicate)
	})

	t.Run("other account does not match", func(t *testing.T) {
		lookup := &fakeLookup{transactions: []Transaction{
			storedTransaction(t, uuid.New(), "15.01.2026", "-42,00", "REWE Markt", "bank-tx-1", "15.01.2026", "-42,00"),
		}}
		checker := NewDuplicateChecker(lookup)

		match, err := checker.Check(ctx, candidate(t, accountID, "15.01.2026", "-42,00", "REWE Markt", "bank-tx-1"))
		require.NoError(t, err)
		assert.False(t, match.Duplicate)
	})
}

func TestDuplicateCheckerBatch(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	lookup := &fakeLookup{transactions: []Transaction{
		storedTransaction(t, accountID, "15.01.2026", "-42,00", "REWE Markt", "bank-tx-1", "15.01.2026", "-42,00"),
		storedTransaction(t, accountID, "16.01.2026", "-10,00", "Bäckerei", "", "16.01.2026", "-10,00"),
		storedTransaction(t, accountID, "17.01.2026", "-99.00", "Tankstelle", "", "", ""),
	}}
	checker := NewDuplicateChecker(lookup)

	candidates := []TransactionCandidate{
		candidate(t, accountID, "15.01.2026", "-42,00", "REWE Markt", "bank-tx-1"), // external id
		candidate(t, accountID, "16.01.2026", "-10,00", "Bäckerei", ""),            // row hash
		candidate(t, accountID, "2026-01-17", "-99,00", "Tankstelle", ""),          // content only
		candidate(t, accountID, "18.01.2026", "-5,00", "Kiosk", ""),                // new
	}

	results, err := checker.CheckBatch(ctx, accountID, candidates)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.True(t, results[0].Duplicate)
	assert.Equal(t, MatchByExternalID, results[0].Strategy)
	assert.True(t, results[1].Duplicate)
	assert.Equal(t, MatchByRowHash, results[1].Strategy)
	assert.True(t, results[2].Duplicate)
	assert.Equal(t, MatchByContent, results[2].Strategy)
	assert.False(t, results[3].Duplicate)

	// Only the two candidates that missed the prefetched sets need a
	// content query.
	assert.Equal(t, 2, lookup.contentCalls)
}
