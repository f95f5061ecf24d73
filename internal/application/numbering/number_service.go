package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/shared"
)

// Service issues document numbers from the configured sequences.
// Formatting is pure; the gapless guarantee comes from the repository's
// row-locked increment.
type Service struct {
	definitions map[string]numbering.Definition
	repo        numbering.SequenceRepository
	now         func() time.Time
}

// NewService creates a numbering service. Definitions must already be
// validated; configuration loading rejects unknown modes at startup.
func NewService(repo numbering.SequenceRepository, definitions map[string]numbering.Definition) *Service {
	return &Service{
		definitions: definitions,
		repo:        repo,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Definition returns the configured numbering scheme for a document type
func (s *Service) Definition(documentType string) (numbering.Definition, error) {
	def, ok := s.definitions[documentType]
	if !ok {
		return numbering.Definition{}, shared.NewDomainError("UNKNOWN_DOCUMENT_TYPE", fmt.Sprintf("No number sequence configured for document type %q", documentType))
	}
	return def, nil
}

// NextNumber draws the next document number using the service's own
// repository. Use NextNumberWith inside a transaction scope so the
// counter update commits together with the document insert.
func (s *Service) NextNumber(ctx context.Context, documentType string) (string, error) {
	return s.NextNumberWith(ctx, s.repo, documentType)
}

// NextNumberWith draws the next document number through the given
// repository, typically one bound to an open transaction.
func (s *Service) NextNumberWith(ctx context.Context, repo numbering.SequenceRepository, documentType string) (string, error) {
	def, err := s.Definition(documentType)
	if err != nil {
		return "", err
	}

	key := numbering.NewSequenceKey(documentType, def.Mode, s.now())
	number, err := repo.NextNumber(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to draw number for %s: %w", documentType, err)
	}

	return def.Format(key, number)
}

// SequenceStatus describes the active counter of a document type
type SequenceStatus struct {
	DocumentType string                `json:"document_type"`
	Prefix       string                `json:"prefix"`
	Mode         numbering.FormatMode  `json:"mode"`
	Year         int                   `json:"year,omitempty"`
	Month        int                   `json:"month,omitempty"`
	LastNumber   int                   `json:"last_number"`
	NextPreview  string                `json:"next_preview"`
}

// Current reports the state of the active counter period without
// consuming a number. NextPreview is informational only; concurrent
// writers may take it first.
func (s *Service) Current(ctx context.Context, documentType string) (*SequenceStatus, error) {
	def, err := s.Definition(documentType)
	if err != nil {
		return nil, err
	}

	key := numbering.NewSequenceKey(documentType, def.Mode, s.now())
	seq, err := s.repo.Current(ctx, key)
	if err != nil {
		return nil, err
	}

	last := 0
	if seq != nil {
		last = seq.LastNumber
	}
	preview, err := def.Format(key, last+1)
	if err != nil {
		return nil, err
	}

	return &SequenceStatus{
		DocumentType: documentType,
		Prefix:       def.Prefix,
		Mode:         def.Mode,
		Year:         key.Year,
		Month:        key.Month,
		LastNumber:   last,
		NextPreview:  preview,
	}, nil
}

// Reset deletes all counters of a document type. Already issued
// documents keep their numbers; the next draw starts a fresh partition.
func (s *Service) Reset(ctx context.Context, documentType string) error {
	if _, err := s.Definition(documentType); err != nil {
		return err
	}
	return s.repo.Reset(ctx, documentType)
}
