package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/service"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/response"
)

// maxImportBytes bounds the import payload; the whole document of a single
// school fits comfortably below this.
const maxImportBytes = 32 * 1024 * 1024

type transferService interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, raw []byte) error
	Reset(ctx context.Context) error
	Report(ctx context.Context, format string) ([]byte, string, error)
}

// TransferHandler exposes the teacher's bulk document operations.
type TransferHandler struct {
	transfer transferService
}

// NewTransferHandler constructs TransferHandler.
func NewTransferHandler(transfer transferService) *TransferHandler {
	return &TransferHandler{transfer: transfer}
}

// Export godoc
// @Summary Download the whole document as JSON (teacher)
// @Tags Transfer
// @Produce json
// @Success 200 {file} binary
// @Router /transfer/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	raw, err := h.transfer.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tracker-export.json"`)
	c.Data(http.StatusOK, "application/json", raw)
}

// Import godoc
// @Summary Replace the whole document from an uploaded JSON export (teacher)
// @Tags Transfer
// @Accept json
// @Produce json
// @Success 204
// @Router /transfer/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read payload"))
		return
	}
	if len(raw) > maxImportBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "import payload too large"))
		return
	}

	err = h.transfer.Import(c.Request.Context(), raw)
	if err != nil && !service.IsPersistWarning(err) {
		response.Error(c, err)
		return
	}
	if meta := response.PersistMeta(err); meta != nil {
		response.JSON(c, http.StatusOK, gin.H{"imported": true}, nil, meta)
		return
	}
	response.NoContent(c)
}

// Reset godoc
// @Summary Wipe all data and reinstate the default document (teacher)
// @Tags Transfer
// @Produce json
// @Success 204
// @Router /transfer/reset [post]
func (h *TransferHandler) Reset(c *gin.Context) {
	if err := h.transfer.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Report godoc
// @Summary Download the progress report (teacher)
// @Tags Transfer
// @Produce json
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /transfer/report [get]
func (h *TransferHandler) Report(c *gin.Context) {
	format := c.DefaultQuery("format", service.ReportFormatCSV)
	raw, filename, err := h.transfer.Report(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "text/csv"
	if format == service.ReportFormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, raw)
}
