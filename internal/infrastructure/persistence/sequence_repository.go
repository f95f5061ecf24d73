package persistence

import (
	"context"
	"errors"

	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements SequenceRepository using GORM. The
// increment runs under SELECT ... FOR UPDATE so two concurrent draws on
// the same counter serialize and every number is issued exactly once.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextNumber atomically increments and returns the counter for the
// given key. The caller must run it inside the transaction that also
// persists the document consuming the number.
func (r *GormSequenceRepository) NextNumber(ctx context.Context, key numbering.SequenceKey) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq numbering.DocumentSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("document_type = ? AND year = ? AND month = ?", key.DocumentType, key.Year, key.Month).
			First(&seq).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = numbering.DocumentSequence{
				BaseEntity:   shared.NewBaseEntity(),
				DocumentType: key.DocumentType,
				Year:         key.Year,
				Month:        key.Month,
				LastNumber:   0,
			}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			// Lock the fresh row; a concurrent creator may have won the
			// unique-index race, in which case Create above failed and
			// we never get here.
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", seq.ID).
				First(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		seq.LastNumber++
		if err := tx.Model(&numbering.DocumentSequence{}).
			Where("id = ?", seq.ID).
			Update("last_number", seq.LastNumber).Error; err != nil {
			return err
		}
		next = seq.LastNumber
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Current returns the counter row for the key, or nil when no number
// has been drawn yet
func (r *GormSequenceRepository) Current(ctx context.Context, key numbering.SequenceKey) (*numbering.DocumentSequence, error) {
	var seq numbering.DocumentSequence
	err := r.db.WithContext(ctx).
		Where("document_type = ? AND year = ? AND month = ?", key.DocumentType, key.Year, key.Month).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// Reset deletes all counters of a document type
func (r *GormSequenceRepository) Reset(ctx context.Context, documentType string) error {
	return r.db.WithContext(ctx).
		Where("document_type = ?", documentType).
		Delete(&numbering.DocumentSequence{}).Error
}

// Ensure GormSequenceRepository implements SequenceRepository
var _ numbering.SequenceRepository = (*GormSequenceRepository)(nil)
