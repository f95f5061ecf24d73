package handler

import (
	appbilling "github.com/buchmeister/backend/internal/application/billing"
	"github.com/buchmeister/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles the invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *appbilling.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices *appbilling.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req appbilling.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	inv, err := h.invoices.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	inv, err := h.invoices.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, inv)
}

// invoiceListRequest adds the invoice-specific list filters
type invoiceListRequest struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT SENT PAID"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	IsLocked   *bool  `form:"is_locked"`
}

// List handles GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	var req invoiceListRequest
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
	if req.IsLocked != nil {
		filter.Filters["is_locked"] = *req.IsLocked
	}

	page, err := h.invoices.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.MetaFromPage(page.Page, page.PageSize, page.Total, page.TotalPages))
}

// Update handles PUT /invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req appbilling.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	inv, err := h.invoices.UpdateDraftInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete handles DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.invoices.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Send handles POST /invoices/:id/send
func (h *InvoiceHandler) Send(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	inv, err := h.invoices.SendInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, inv)
}

// MarkPaid handles POST /invoices/:id/payment
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req appbilling.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	inv, err := h.invoices.MarkInvoicePaid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, inv)
}

// cancelInvoiceRequest carries the reason of a cancellation
type cancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Cancel handles POST /invoices/:id/cancel. The response is the new
// cancellation document, not the cancelled invoice.
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req cancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	storno, err := h.invoices.CancelInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, storno)
}

// Correct handles POST /invoices/:id/correct. The response is the new
// correction document.
func (h *InvoiceHandler) Correct(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req appbilling.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	correction, err := h.invoices.CorrectInvoice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, correction)
}
