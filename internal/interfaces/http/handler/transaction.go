package handler

import (
	appbanking "github.com/buchmeister/backend/internal/application/banking"
	"github.com/buchmeister/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles the bank transaction endpoints
type TransactionHandler struct {
	BaseHandler
	transactions *appbanking.TransactionService
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *appbanking.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Record handles POST /transactions. Recording is idempotent: a
// duplicate returns the stored original with a 200 instead of a 201.
func (h *TransactionHandler) Record(c *gin.Context) {
	var req appbanking.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.transactions.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if result.Duplicate {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	tx, err := h.transactions.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tx)
}

// List handles GET /accounts/:id/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	accountID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	txs, err := h.transactions.ListTransactions(c.Request.Context(), accountID, req.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, txs)
}

// CheckDuplicate handles POST /transactions/check-duplicate. It runs
// the duplicate detection without storing anything.
func (h *TransactionHandler) CheckDuplicate(c *gin.Context) {
	var req appbanking.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	match, err := h.transactions.CheckDuplicate(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, match)
}

// Sweep handles POST /transactions/sweep. It scans all stored
// transactions and removes retroactive duplicates.
func (h *TransactionHandler) Sweep(c *gin.Context) {
	result, err := h.transactions.SweepDuplicates(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}
