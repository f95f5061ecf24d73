package handler

import (
	appnumbering "github.com/buchmeister/backend/internal/application/numbering"
	"github.com/gin-gonic/gin"
)

// SequenceHandler exposes the document number counters for inspection
// and administrative reset
type SequenceHandler struct {
	BaseHandler
	numbers *appnumbering.Service
}

// NewSequenceHandler creates a new sequence handler
func NewSequenceHandler(numbers *appnumbering.Service) *SequenceHandler {
	return &SequenceHandler{numbers: numbers}
}

// Current handles GET /sequences/:documentType. The reported preview is
// informational; a concurrent writer may take the number first.
func (h *SequenceHandler) Current(c *gin.Context) {
	status, err := h.numbers.Current(c.Request.Context(), c.Param("documentType"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, status)
}

// Reset handles DELETE /sequences/:documentType. Issued documents keep
// their numbers; only the counters are cleared.
func (h *SequenceHandler) Reset(c *gin.Context) {
	if err := h.numbers.Reset(c.Request.Context(), c.Param("documentType")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
