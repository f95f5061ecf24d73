package banking

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/buchmeister/backend/internal/domain/banking"
	"github.com/buchmeister/backend/internal/domain/shared"
	csvimport "github.com/buchmeister/backend/internal/infrastructure/import"
	"github.com/google/uuid"
)

// MaxImportFileSize caps uploaded statement files at 10 MB
const MaxImportFileSize = 10 << 20

// Column aliases seen across bank statement exports. The first matching
// non-empty column wins.
var (
	dateColumns         = []string{"Booking Date", "Value Date", "Completed Date", "Transaction Date", "Date", "Buchungstag", "Wertstellung", "Datum"}
	amountColumns       = []string{"Amount", "Payment Amount", "Betrag"}
	descriptionColumns  = []string{"Description", "Reference", "Document Name", "Verwendungszweck", "Beschreibung"}
	counterpartyColumns = []string{"Counterparty", "Counterparty Name", "Payer", "Empfaenger", "Auftraggeber"}
	externalIDColumns   = []string{"Transaction ID", "External ID", "ID"}
	currencyColumns     = []string{"Currency", "Waehrung"}
)

// DuplicateRow reports a skipped statement row and the strategy that
// flagged it
type DuplicateRow struct {
	Row      int                   `json:"row"`
	Strategy banking.MatchStrategy `json:"strategy"`
}

// ImportResult summarizes a statement import
type ImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Duplicates   []DuplicateRow       `json:"duplicates,omitempty"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ImportService imports bank statement CSV files. Rows that duplicate a
// stored transaction or an earlier row of the same file are skipped,
// never rejected: re-uploading a statement is expected and harmless.
type ImportService struct {
	accountRepo     banking.BankAccountRepository
	transactionRepo banking.TransactionRepository
	checker         *banking.DuplicateChecker
}

// NewImportService creates a new import service
func NewImportService(accountRepo banking.BankAccountRepository, transactionRepo banking.TransactionRepository) *ImportService {
	return &ImportService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		checker:         banking.NewDuplicateChecker(transactionRepo),
	}
}

// ImportCSV parses and imports one statement file for the given account
func (s *ImportService) ImportCSV(ctx context.Context, accountID uuid.UUID, fileName string, data []byte) (*ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return nil, csvimport.ErrUnsupportedFileType
	}
	if len(data) > MaxImportFileSize {
		return nil, csvimport.ErrFileTooLarge
	}

	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Bank account not found")
	}

	parser, err := csvimport.ParseFromBytes(data)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if !hasAnyColumn(parser, dateColumns) || !hasAnyColumn(parser, amountColumns) {
		return nil, shared.NewDomainError("MISSING_COLUMNS", "CSV must contain a date and an amount column")
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csvimport.ErrNoDataRows
	}

	result := &ImportResult{TotalRows: len(rows)}
	errs := csvimport.NewErrorCollection(100)

	candidates := make([]banking.TransactionCandidate, 0, len(rows))
	lineNumbers := make([]int, 0, len(rows))
	for _, row := range rows {
		candidate, rowErr := s.candidateFromRow(accountID, account.Currency, row)
		if rowErr != nil {
			errs.Add(*rowErr)
			continue
		}
		candidates = append(candidates, candidate)
		lineNumbers = append(lineNumbers, row.LineNumber)
	}

	matches, err := s.checker.CheckBatch(ctx, accountID, candidates)
	if err != nil {
		return nil, err
	}

	// Track what this file already contributed, so the same row twice
	// in one upload is caught before anything reaches the database.
	seenExternalIDs := make(map[string]struct{})
	seenHashes := make(map[string]struct{})
	seenContent := make(map[string]struct{})

	transactions := make([]*banking.Transaction, 0, len(candidates))
	for idx, candidate := range candidates {
		if match := matches[idx]; match.Duplicate {
			result.SkippedRows++
			result.Duplicates = append(result.Duplicates, DuplicateRow{Row: lineNumbers[idx], Strategy: match.Strategy})
			continue
		}
		if strategy, dup := inFileDuplicate(candidate, seenExternalIDs, seenHashes, seenContent); dup {
			result.SkippedRows++
			result.Duplicates = append(result.Duplicates, DuplicateRow{Row: lineNumbers[idx], Strategy: strategy})
			continue
		}

		tx, err := banking.NewTransaction(candidate.AccountID, candidate.BookingDate, candidate.Amount,
			candidate.Currency, candidate.Description, candidate.Counterparty)
		if err != nil {
			errs.Add(csvimport.NewRowError(lineNumbers[idx], err.Error()))
			continue
		}
		tx.SetExternalID(candidate.ExternalID)
		tx.SetRowHash(candidate.RowHash())
		transactions = append(transactions, tx)
	}

	if len(transactions) > 0 {
		if err := s.transactionRepo.SaveAll(ctx, transactions); err != nil {
			return nil, err
		}
	}

	result.ImportedRows = len(transactions)
	result.ErrorRows = errs.TotalCount()
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
	return result, nil
}

func (s *ImportService) candidateFromRow(accountID uuid.UUID, accountCurrency string, row *csvimport.Row) (banking.TransactionCandidate, *csvimport.RowError) {
	rawDate := row.First(dateColumns...)
	if rawDate == "" {
		err := csvimport.NewRowError(row.LineNumber, "Missing booking date")
		return banking.TransactionCandidate{}, &err
	}
	bookingDate, err := banking.ParseDate(rawDate)
	if err != nil {
		rowErr := csvimport.NewRowErrorWithValue(row.LineNumber, fmt.Sprintf("Invalid date: %s", rawDate), rawDate)
		return banking.TransactionCandidate{}, &rowErr
	}

	rawAmount := row.First(amountColumns...)
	if rawAmount == "" {
		err := csvimport.NewRowError(row.LineNumber, "Missing amount")
		return banking.TransactionCandidate{}, &err
	}
	amount, err := banking.ParseAmount(rawAmount)
	if err != nil {
		rowErr := csvimport.NewRowErrorWithValue(row.LineNumber, fmt.Sprintf("Invalid amount: %s", rawAmount), rawAmount)
		return banking.TransactionCandidate{}, &rowErr
	}

	description := row.First(descriptionColumns...)
	if description == "" {
		err := csvimport.NewRowError(row.LineNumber, "Missing description")
		return banking.TransactionCandidate{}, &err
	}

	currency := row.First(currencyColumns...)
	if currency == "" {
		currency = accountCurrency
	}

	return banking.TransactionCandidate{
		AccountID:    accountID,
		BookingDate:  bookingDate,
		Amount:       amount,
		Currency:     currency,
		Description:  description,
		Counterparty: row.First(counterpartyColumns...),
		ExternalID:   row.First(externalIDColumns...),
		RawDate:      rawDate,
		RawAmount:    rawAmount,
	}, nil
}

func hasAnyColumn(parser *csvimport.CSVParser, names []string) bool {
	for _, name := range names {
		if parser.HasHeader(name) {
			return true
		}
	}
	return false
}

func inFileDuplicate(c banking.TransactionCandidate, externalIDs, hashes, content map[string]struct{}) (banking.MatchStrategy, bool) {
	if c.ExternalID != "" {
		if _, ok := externalIDs[c.ExternalID]; ok {
			return banking.MatchByExternalID, true
		}
	}
	hash := c.RowHash()
	if _, ok := hashes[hash]; ok {
		return banking.MatchByRowHash, true
	}
	key := candidateContentKey(c)
	if _, ok := content[key]; ok {
		return banking.MatchByContent, true
	}

	if c.ExternalID != "" {
		externalIDs[c.ExternalID] = struct{}{}
	}
	hashes[hash] = struct{}{}
	content[key] = struct{}{}
	return "", false
}

func candidateContentKey(c banking.TransactionCandidate) string {
	return fmt.Sprintf("%s|%s|%s",
		c.BookingDate.Format("2006-01-02"),
		c.Amount.String(),
		c.Description,
	)
}
