package persistence

import (
	"context"
	"errors"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAttachmentRepository implements AttachmentRepository using GORM
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewGormAttachmentRepository creates a new GormAttachmentRepository
func NewGormAttachmentRepository(db *gorm.DB) *GormAttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// FindByID finds an attachment by ID. Returns nil when not found.
func (r *GormAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*banking.TransactionAttachment, error) {
	var attachment banking.TransactionAttachment
	err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// FindByTransactionID finds all attachments of one transaction
func (r *GormAttachmentRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]banking.TransactionAttachment, error) {
	var attachments []banking.TransactionAttachment
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// Save creates or updates attachment metadata
func (r *GormAttachmentRepository) Save(ctx context.Context, attachment *banking.TransactionAttachment) error {
	return r.db.WithContext(ctx).Save(attachment).Error
}

// Delete removes attachment metadata
func (r *GormAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&banking.TransactionAttachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormAttachmentRepository implements AttachmentRepository
var _ banking.AttachmentRepository = (*GormAttachmentRepository)(nil)
