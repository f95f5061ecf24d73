package persistence

import (
	"fmt"
	"testing"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/billing"
	"github.com/buchmeister/backend/internal/domain/numbering"
	"github.com/buchmeister/backend/internal/domain/partner"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// Each test gets its own named database so parallel tests do not share
// state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&numbering.DocumentSequence{},
		&billing.Invoice{},
		&billing.InvoiceItem{},
		&billing.Quote{},
		&billing.QuoteItem{},
		&partner.Customer{},
		&banking.BankAccount{},
		&banking.Transaction{},
		&banking.TransactionAttachment{},
	)
	require.NoError(t, err)

	return db
}
