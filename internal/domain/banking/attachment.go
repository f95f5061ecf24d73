package banking

import (
	"strings"

	"github.com/buchmeister/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionAttachment is a receipt or other document filed against a
// bank transaction. The binary content lives in object storage under
// StorageKey; this record only carries the metadata.
type TransactionAttachment struct {
	shared.BaseEntity
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName      string    `gorm:"not null"`
	ContentType   string    `gorm:"not null"`
	Size          int64     `gorm:"not null"`
	StorageKey    string    `gorm:"not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (TransactionAttachment) TableName() string {
	return "transaction_attachments"
}

// NewTransactionAttachment creates attachment metadata for a stored file
func NewTransactionAttachment(transactionID uuid.UUID, fileName, contentType string, size int64, storageKey string) (*TransactionAttachment, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_ATTACHMENT", "File name cannot be empty")
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_ATTACHMENT", "File size must be positive")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_ATTACHMENT", "Storage key cannot be empty")
	}

	return &TransactionAttachment{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		FileName:      fileName,
		ContentType:   contentType,
		Size:          size,
		StorageKey:    storageKey,
	}, nil
}
