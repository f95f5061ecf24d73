package banking

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentSize caps uploaded receipts at 10 MB
const MaxAttachmentSize = 10 << 20

// ObjectStorage stores attachment binaries under opaque keys. The S3
// implementation lives in infrastructure/storage.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// AttachmentService files receipts against bank transactions. Metadata
// goes to the database, the bytes to object storage.
type AttachmentService struct {
	transactionRepo banking.TransactionRepository
	attachmentRepo  banking.AttachmentRepository
	storage         ObjectStorage
}

// NewAttachmentService creates a new attachment service
func NewAttachmentService(
	transactionRepo banking.TransactionRepository,
	attachmentRepo banking.AttachmentRepository,
	storage ObjectStorage,
) *AttachmentService {
	return &AttachmentService{
		transactionRepo: transactionRepo,
		attachmentRepo:  attachmentRepo,
		storage:         storage,
	}
}

// Upload stores a file and files it against the given transaction
func (s *AttachmentService) Upload(ctx context.Context, transactionID uuid.UUID, fileName, contentType string, data []byte) (*banking.TransactionAttachment, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_ATTACHMENT", "File is empty")
	}
	if len(data) > MaxAttachmentSize {
		return nil, shared.NewDomainError("ATTACHMENT_TOO_LARGE", "File exceeds the 10 MB limit")
	}

	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("TRANSACTION_NOT_FOUND", "Transaction not found")
	}

	storageKey := fmt.Sprintf("attachments/%s/%s%s", transactionID, uuid.New(), filepath.Ext(fileName))
	attachment, err := banking.NewTransactionAttachment(transactionID, fileName, contentType, int64(len(data)), storageKey)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Put(ctx, storageKey, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		// The orphaned object is cleaned up best-effort; metadata is
		// the source of truth.
		_ = s.storage.Delete(ctx, storageKey)
		return nil, err
	}
	return attachment, nil
}

// Download returns the metadata and bytes of one attachment
func (s *AttachmentService) Download(ctx context.Context, id uuid.UUID) (*banking.TransactionAttachment, []byte, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if attachment == nil {
		return nil, nil, shared.ErrNotFound
	}

	data, err := s.storage.Get(ctx, attachment.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attachment: %w", err)
	}
	return attachment, data, nil
}

// List returns all attachments of one transaction
func (s *AttachmentService) List(ctx context.Context, transactionID uuid.UUID) ([]banking.TransactionAttachment, error) {
	return s.attachmentRepo.FindByTransactionID(ctx, transactionID)
}

// Delete removes an attachment and its stored file
func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if attachment == nil {
		return shared.ErrNotFound
	}

	if err := s.storage.Delete(ctx, attachment.StorageKey); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return s.attachmentRepo.Delete(ctx, id)
}
