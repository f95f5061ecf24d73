package handler

import (
	appbilling "github.com/buchmeister/backend/internal/application/billing"
	"github.com/buchmeister/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuoteHandler handles the quote endpoints
type QuoteHandler struct {
	BaseHandler
	quotes *appbilling.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quotes *appbilling.QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: quotes}
}

// Create handles POST /quotes
func (h *QuoteHandler) Create(c *gin.Context) {
	var req appbilling.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	quote, err := h.quotes.CreateQuote(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, quote)
}

// Get handles GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	quote, err := h.quotes.GetQuote(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, quote)
}

// quoteListRequest adds the quote-specific list filters
type quoteListRequest struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT SENT ACCEPTED REJECTED"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

// List handles GET /quotes
func (h *QuoteHandler) List(c *gin.Context) {
	var req quoteListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := req.ToFilter()
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.CustomerID != "" {
		customerID, _ := uuid.Parse(req.CustomerID)
		filter.Filters["customer_id"] = customerID
	}

	page, err := h.quotes.ListQuotes(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.MetaFromPage(page.Page, page.PageSize, page.Total, page.TotalPages))
}

// Update handles PUT /quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req appbilling.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	quote, err := h.quotes.UpdateDraftQuote(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, quote)
}

// Delete handles DELETE /quotes/:id
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.quotes.DeleteQuote(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Send handles POST /quotes/:id/send
func (h *QuoteHandler) Send(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	quote, err := h.quotes.SendQuote(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, quote)
}

// Accept handles POST /quotes/:id/accept
func (h *QuoteHandler) Accept(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	quote, err := h.quotes.AcceptQuote(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, quote)
}

// Reject handles POST /quotes/:id/reject
func (h *QuoteHandler) Reject(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	quote, err := h.quotes.RejectQuote(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, quote)
}

// convertQuoteResponse reports the invoice a quote was converted into
type convertQuoteResponse struct {
	Invoice          interface{} `json:"invoice"`
	AlreadyConverted bool        `json:"already_converted"`
}

// Convert handles POST /quotes/:id/convert. Conversion is idempotent:
// repeating the call returns the existing invoice with a 200 instead of
// creating a second one.
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	result, err := h.quotes.ConvertQuote(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := convertQuoteResponse{
		Invoice:          result.Invoice,
		AlreadyConverted: result.AlreadyConverted,
	}
	if result.AlreadyConverted {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}
