package numbering

import (
	"fmt"
	"time"

	"github.com/buchmeister/backend/internal/domain/shared"
)

// Document types with managed number sequences
const (
	DocumentTypeInvoice  = "invoice"
	DocumentTypeQuote    = "quote"
	DocumentTypeCustomer = "customer"
)

// FormatMode controls how a sequence is partitioned and rendered
type FormatMode string

const (
	// ModeContinuous never resets; numbers render as {prefix}-{number}
	ModeContinuous FormatMode = "CONTINUOUS"
	// ModeYear resets each year; numbers render as {prefix}-{year}-{number}
	ModeYear FormatMode = "YEAR"
	// ModeMonth resets each month; numbers render as {prefix}-{year}-{month}-{number}
	ModeMonth FormatMode = "MONTH"
)

// IsValid returns true if the format mode is known
func (m FormatMode) IsValid() bool {
	switch m {
	case ModeContinuous, ModeYear, ModeMonth:
		return true
	}
	return false
}

// String returns the mode as a string
func (m FormatMode) String() string {
	return string(m)
}

// ParseFormatMode parses a format mode from configuration.
// An unknown mode is an error, never silently coerced to a fallback.
func ParseFormatMode(s string) (FormatMode, error) {
	mode := FormatMode(s)
	if !mode.IsValid() {
		return "", shared.NewDomainError("INVALID_NUMBER_FORMAT", fmt.Sprintf("unknown number format mode: %q", s))
	}
	return mode, nil
}

// SequenceKey identifies one counter row. Year and Month are zero for
// the partitions the mode does not use, so a CONTINUOUS sequence always
// maps to the same row regardless of date.
type SequenceKey struct {
	DocumentType string
	Year         int
	Month        int
}

// NewSequenceKey derives the active counter key for a document type at
// the given time under the given mode.
func NewSequenceKey(documentType string, mode FormatMode, at time.Time) SequenceKey {
	key := SequenceKey{DocumentType: documentType}
	switch mode {
	case ModeYear:
		key.Year = at.Year()
	case ModeMonth:
		key.Year = at.Year()
		key.Month = int(at.Month())
	}
	return key
}

// DocumentSequence is the persistent counter for one (type, year, month)
// partition. LastNumber is the highest number already issued; the next
// document receives LastNumber+1. Rows are only ever mutated under a
// database row lock so issued numbers are gapless per partition.
type DocumentSequence struct {
	shared.BaseEntity
	DocumentType string `gorm:"not null;uniqueIndex:idx_sequence_key"`
	Year         int    `gorm:"not null;uniqueIndex:idx_sequence_key"`
	Month        int    `gorm:"not null;uniqueIndex:idx_sequence_key"`
	LastNumber   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequence) TableName() string {
	return "document_sequences"
}

// Definition is the configured numbering scheme for one document type.
type Definition struct {
	Prefix  string
	Mode    FormatMode
	Padding int
}

// Validate checks the definition for configuration errors
func (d Definition) Validate() error {
	if d.Prefix == "" {
		return shared.NewDomainError("INVALID_NUMBER_FORMAT", "number prefix cannot be empty")
	}
	if !d.Mode.IsValid() {
		return shared.NewDomainError("INVALID_NUMBER_FORMAT", fmt.Sprintf("unknown number format mode: %q", d.Mode))
	}
	if d.Padding < 1 {
		return shared.NewDomainError("INVALID_NUMBER_FORMAT", "number padding must be at least 1")
	}
	return nil
}

// Format renders a drawn number as a document number string. Padding is
// a minimum width; numbers beyond the padded range keep all digits.
func (d Definition) Format(key SequenceKey, number int) (string, error) {
	padded := fmt.Sprintf("%0*d", d.Padding, number)
	switch d.Mode {
	case ModeContinuous:
		return fmt.Sprintf("%s-%s", d.Prefix, padded), nil
	case ModeYear:
		return fmt.Sprintf("%s-%d-%s", d.Prefix, key.Year, padded), nil
	case ModeMonth:
		return fmt.Sprintf("%s-%d-%02d-%s", d.Prefix, key.Year, key.Month, padded), nil
	}
	return "", shared.NewDomainError("INVALID_NUMBER_FORMAT", fmt.Sprintf("unknown number format mode: %q", d.Mode))
}
