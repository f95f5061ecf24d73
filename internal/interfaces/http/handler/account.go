package handler

import (
	appbanking "github.com/buchmeister/backend/internal/application/banking"
	"github.com/buchmeister/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles the bank account endpoints
type AccountHandler struct {
	BaseHandler
	accounts *appbanking.AccountService
}

// NewAccountHandler creates a new bank account handler
func NewAccountHandler(accounts *appbanking.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create handles POST /accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req appbanking.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, account)
}

// Get handles GET /accounts/:id
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// List handles GET /accounts
func (h *AccountHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.accounts.ListAccounts(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.MetaFromPage(page.Page, page.PageSize, page.Total, page.TotalPages))
}

// renameAccountRequest carries the new display name of an account
type renameAccountRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename handles PUT /accounts/:id
func (h *AccountHandler) Rename(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req renameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	account, err := h.accounts.RenameAccount(c.Request.Context(), id, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}
