package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/service"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/response"
)

// importBodyLimit caps backup uploads.
const importBodyLimit = 20 << 20

// BackupHandler serves the backup and catalog endpoints.
type BackupHandler struct {
	service *service.BackupService
}

// NewBackupHandler constructs a backup handler.
func NewBackupHandler(svc *service.BackupService) *BackupHandler {
	return &BackupHandler{service: svc}
}

// Export godoc
// @Summary Download the full dataset as a JSON file
// @Tags Backup
// @Produce json
// @Success 200 {object} models.Backup
// @Security BearerAuth
// @Router /backup/export [get]
func (h *BackupHandler) Export(c *gin.Context) {
	backup, err := h.service.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("respaldo_%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, backup)
}

// Import godoc
// @Summary Restore a dataset from an exported JSON file
// @Tags Backup
// @Accept json
// @Success 204
// @Security BearerAuth
// @Router /backup/import [post]
func (h *BackupHandler) Import(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, importBodyLimit))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read backup payload"))
		return
	}
	if err := h.service.Import(c.Request.Context(), payload); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CatalogPDF godoc
// @Summary Resource catalog as a printable PDF
// @Tags Backup
// @Produce application/pdf
// @Success 200
// @Security BearerAuth
// @Router /backup/catalog.pdf [get]
func (h *BackupHandler) CatalogPDF(c *gin.Context) {
	out, err := h.service.CatalogPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="catalogo_recursos.pdf"`)
	c.Data(http.StatusOK, "application/pdf", out)
}

// CatalogCSV godoc
// @Summary Resource catalog as CSV
// @Tags Backup
// @Produce text/csv
// @Success 200
// @Security BearerAuth
// @Router /backup/catalog.csv [get]
func (h *BackupHandler) CatalogCSV(c *gin.Context) {
	out, err := h.service.CatalogCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="catalogo_recursos.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", out)
}
