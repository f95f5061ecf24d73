package handler

import (
	"io"
	"net/http"

	appbanking "github.com/buchmeister/backend/internal/application/banking"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler handles receipt attachments on bank transactions
type AttachmentHandler struct {
	BaseHandler
	attachments *appbanking.AttachmentService
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachments *appbanking.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload handles POST /transactions/:id/attachments. The file is
// expected as multipart field "file".
func (h *AttachmentHandler) Upload(c *gin.Context) {
	transactionID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Multipart field 'file' is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, appbanking.MaxAttachmentSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment, err := h.attachments.Upload(c.Request.Context(), transactionID, fileHeader.Filename, contentType, data)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, attachment)
}

// List handles GET /transactions/:id/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	transactionID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	attachments, err := h.attachments.List(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, attachments)
}

// Download handles GET /attachments/:id/download. It streams the file
// bytes rather than the JSON envelope.
func (h *AttachmentHandler) Download(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	attachment, data, err := h.attachments.Download(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Data(http.StatusOK, attachment.ContentType, data)
}

// Delete handles DELETE /attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.attachments.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
