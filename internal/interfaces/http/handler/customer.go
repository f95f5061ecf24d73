package handler

import (
	apppartner "github.com/buchmeister/backend/internal/application/partner"
	"github.com/buchmeister/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles the customer endpoints
type CustomerHandler struct {
	BaseHandler
	customers *apppartner.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers *apppartner.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Create handles POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req apppartner.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	customer, err := h.customers.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, customer)
}

// Get handles GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}

// customerListRequest adds the customer-specific list filters
type customerListRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=active archived"`
}

// List handles GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	var req customerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := req.ToFilter()
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	page, err := h.customers.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, dto.MetaFromPage(page.Page, page.PageSize, page.Total, page.TotalPages))
}

// Update handles PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req apppartner.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	customer, err := h.customers.UpdateCustomer(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}

// Archive handles POST /customers/:id/archive
func (h *CustomerHandler) Archive(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customers.ArchiveCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}

// Activate handles POST /customers/:id/activate
func (h *CustomerHandler) Activate(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customers.ActivateCustomer(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, customer)
}
