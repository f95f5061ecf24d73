package banking

import (
	"context"
	"fmt"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStrategy identifies how a duplicate was detected
type MatchStrategy string

const (
	// MatchByExternalID matches on the bank's own transaction identifier
	MatchByExternalID MatchStrategy = "EXTERNAL_ID"
	// MatchByRowHash matches on the fingerprint of the raw CSV row
	MatchByRowHash MatchStrategy = "CSV_ROW_HASH"
	// MatchByContent matches on date, amount and description
	MatchByContent MatchStrategy = "CONTENT"
)

// IsValid checks if the strategy is known
func (s MatchStrategy) IsValid() bool {
	switch s {
	case MatchByExternalID, MatchByRowHash, MatchByContent:
		return true
	}
	return false
}

// String returns the strategy name
func (s MatchStrategy) String() string {
	return string(s)
}

// TransactionCandidate is an incoming transaction that has not been
// persisted yet. RawDate and RawAmount keep the source's original
// formatting for row hashing; the parsed fields drive content matching.
type TransactionCandidate struct {
	AccountID    uuid.UUID
	BookingDate  time.Time
	Amount       decimal.Decimal
	Currency     string
	Description  string
	Counterparty string
	ExternalID   string
	RawDate      string
	RawAmount    string
}

// RowHash returns the fingerprint of the candidate's source row. When
// the candidate did not come from a CSV row, the parsed values stand in
// for the raw strings.
func (c TransactionCandidate) RowHash() string {
	rawDate := c.RawDate
	if rawDate == "" {
		rawDate = c.BookingDate.Format("2006-01-02")
	}
	rawAmount := c.RawAmount
	if rawAmount == "" {
		rawAmount = c.Amount.String()
	}
	return RowHash(rawDate, rawAmount, c.Description)
}

// DuplicateMatch is the outcome of a duplicate check. ExistingID is set
// when the matching strategy looked up the stored transaction directly.
type DuplicateMatch struct {
	Duplicate  bool          `json:"duplicate"`
	Strategy   MatchStrategy `json:"strategy,omitempty"`
	ExistingID uuid.UUID     `json:"existing_id,omitempty"`
}

// DuplicateLookup is the read access the duplicate strategies need.
// TransactionRepository implements it.
type DuplicateLookup interface {
	FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*Transaction, error)
	FindByRowHash(ctx context.Context, accountID uuid.UUID, hash string) (*Transaction, error)
	FindByContent(ctx context.Context, accountID uuid.UUID, bookingDate time.Time, amount decimal.Decimal, description string) (*Transaction, error)
	// ListExternalIDs returns the subset of the given external IDs that
	// already exist for the account
	ListExternalIDs(ctx context.Context, accountID uuid.UUID, externalIDs []string) (map[string]struct{}, error)
	// ListRowHashes returns the subset of the given row hashes that
	// already exist for the account
	ListRowHashes(ctx context.Context, accountID uuid.UUID, hashes []string) (map[string]struct{}, error)
}

// DuplicateStrategy checks one candidate with a single matching rule
type DuplicateStrategy interface {
	Name() MatchStrategy
	Check(ctx context.Context, lookup DuplicateLookup, candidate TransactionCandidate) (DuplicateMatch, error)
}

// GetStrategy returns the strategy implementation for the given name
func GetStrategy(name MatchStrategy) (DuplicateStrategy, error) {
	switch name {
	case MatchByExternalID:
		return &externalIDStrategy{}, nil
	case MatchByRowHash:
		return &rowHashStrategy{}, nil
	case MatchByContent:
		return &contentStrategy{}, nil
	}
	return nil, shared.NewDomainError("INVALID_STRATEGY", fmt.Sprintf("Unknown duplicate strategy: %q", name))
}

type externalIDStrategy struct{}

func (s *externalIDStrategy) Name() MatchStrategy { return MatchByExternalID }

func (s *externalIDStrategy) Check(ctx context.Context, lookup DuplicateLookup, candidate TransactionCandidate) (DuplicateMatch, error) {
	if candidate.ExternalID == "" {
		return DuplicateMatch{}, nil
	}
	existing, err := lookup.FindByExternalID(ctx, candidate.AccountID, candidate.ExternalID)
	if err != nil {
		return DuplicateMatch{}, err
	}
	if existing == nil {
		return DuplicateMatch{}, nil
	}
	return DuplicateMatch{Duplicate: true, Strategy: MatchByExternalID, ExistingID: existing.ID}, nil
}

type rowHashStrategy struct{}

func (s *rowHashStrategy) Name() MatchStrategy { return MatchByRowHash }

func (s *rowHashStrategy) Check(ctx context.Context, lookup DuplicateLookup, candidate TransactionCandidate) (DuplicateMatch, error) {
	existing, err := lookup.FindByRowHash(ctx, candidate.AccountID, candidate.RowHash())
	if err != nil {
		return DuplicateMatch{}, err
	}
	if existing == nil {
		return DuplicateMatch{}, nil
	}
	return DuplicateMatch{Duplicate: true, Strategy: MatchByRowHash, ExistingID: existing.ID}, nil
}

type contentStrategy struct{}

func (s *contentStrategy) Name() MatchStrategy { return MatchByContent }

func (s *contentStrategy) Check(ctx context.Context, lookup DuplicateLookup, candidate TransactionCandidate) (DuplicateMatch, error) {
	existing, err := lookup.FindByContent(ctx, candidate.AccountID, candidate.BookingDate, candidate.Amount, candidate.Description)
	if err != nil {
		return DuplicateMatch{}, err
	}
	if existing == nil {
		return DuplicateMatch{}, nil
	}
	return DuplicateMatch{Duplicate: true, Strategy: MatchByContent, ExistingID: existing.ID}, nil
}

// DuplicateChecker runs the matching strategies in order of reliability
// and stops at the first hit: external ID, then row hash, then content.
type DuplicateChecker struct {
	lookup     DuplicateLookup
	strategies []DuplicateStrategy
}

// NewDuplicateChecker creates a checker with the standard strategy order
func NewDuplicateChecker(lookup DuplicateLookup) *DuplicateChecker {
	return &DuplicateChecker{
		lookup: lookup,
		strategies: []DuplicateStrategy{
			&externalIDStrategy{},
			&rowHashStrategy{},
			&contentStrategy{},
		},
	}
}

// Check tests a single candidate against the stored transactions
func (c *DuplicateChecker) Check(ctx context.Context, candidate TransactionCandidate) (DuplicateMatch, error) {
	for _, strategy := range c.strategies {
		match, err := strategy.Check(ctx, c.lookup, candidate)
		if err != nil {
			return DuplicateMatch{}, err
		}
		if match.Duplicate {
			return match, nil
		}
	}
	return DuplicateMatch{}, nil
}

// CheckBatch tests many candidates at once. External IDs and row hashes
// are prefetched in two queries; only candidates that miss both sets
// fall back to a per-candidate content query.
func (c *DuplicateChecker) CheckBatch(ctx context.Context, accountID uuid.UUID, candidates []TransactionCandidate) (map[int]DuplicateMatch, error) {
	externalIDs := make([]string, 0, len(candidates))
	hashes := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ExternalID != "" {
			externalIDs = append(externalIDs, candidate.ExternalID)
		}
		hashes = append(hashes, candidate.RowHash())
	}

	existingIDs, err := c.lookup.ListExternalIDs(ctx, accountID, externalIDs)
	if err != nil {
		return nil, err
	}
	existingHashes, err := c.lookup.ListRowHashes(ctx, accountID, hashes)
	if err != nil {
		return nil, err
	}

	results := make(map[int]DuplicateMatch, len(candidates))
	for idx, candidate := range candidates {
		if candidate.ExternalID != "" {
			if _, ok := existingIDs[candidate.ExternalID]; ok {
				results[idx] = DuplicateMatch{Duplicate: true, Strategy: MatchByExternalID}
				continue
			}
		}
		if _, ok := existingHashes[candidate.RowHash()]; ok {
			results[idx] = DuplicateMatch{Duplicate: true, Strategy: MatchByRowHash}
			continue
		}

		match, err := (&contentStrategy{}).Check(ctx, c.lookup, candidate)
		if err != nil {
			return nil, err
		}
		results[idx] = match
	}

	return results, nil
}
