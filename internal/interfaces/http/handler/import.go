package handler

import (
	"errors"
	"io"
	"net/http"

	appbanking "github.com/buchmeister/backend/internal/application/banking"
	csvimport "github.com/buchmeister/backend/internal/infrastructure/import"
	"github.com/buchmeister/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ImportHandler handles bank statement uploads
type ImportHandler struct {
	BaseHandler
	imports *appbanking.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(imports *appbanking.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// Upload handles POST /accounts/:id/import. The statement CSV is
// expected as multipart field "file".
func (h *ImportHandler) Upload(c *gin.Context) {
	accountID, ok := h.ParseIDParam(c)
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

	// Read one byte past the limit so the service can reject oversized
	// files instead of silently truncating them.
	data, err := io.ReadAll(io.LimitReader(file, appbanking.MaxImportFileSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}

	result, err := h.imports.ImportCSV(c.Request.Context(), accountID, fileHeader.Filename, data)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	h.Success(c, result)
}

// handleImportError translates parser sentinels before falling back to
// the generic domain error handling
func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, csvimport.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrCodePayloadTooLarge, err.Error()))
	case errors.Is(err, csvimport.ErrUnsupportedFileType),
		errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrNoDataRows):
		h.BadRequest(c, err.Error())
	default:
		h.HandleDomainError(c, err)
	}
}
