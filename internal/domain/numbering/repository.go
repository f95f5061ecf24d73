package numbering

import "context"

// SequenceRepository manages persistent document number counters.
type SequenceRepository interface {
	// NextNumber atomically increments and returns the counter for the
	// given key, creating it at zero on first use. Implementations must
	// hold a row lock for the read-increment-write cycle so concurrent
	// callers receive distinct consecutive numbers.
	NextNumber(ctx context.Context, key SequenceKey) (int, error)
	// Current returns the counter row for the key, or nil if no number
	// has been issued yet for that partition.
	Current(ctx context.Context, key SequenceKey) (*DocumentSequence, error)
	// Reset deletes all counter rows for a document type. Meant for
	// administrative use; issued documents keep their numbers.
	Reset(ctx context.Context, documentType string) error
}
