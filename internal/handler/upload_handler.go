package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/response"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/storage"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadHandler stores admin-uploaded images on the local file store.
type UploadHandler struct {
	storage *storage.LocalStorage
	maxSize int64
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(st *storage.LocalStorage, maxSize int64) *UploadHandler {
	return &UploadHandler{storage: st, maxSize: maxSize}
}

// Upload godoc
// @Summary Upload an image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param folder formData string false "Destination folder"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing file field"))
		return
	}
	if header.Size > h.maxSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("el archivo supera el límite de %d bytes", h.maxSize)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxSize+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	if int64(len(data)) > h.maxSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("el archivo supera el límite de %d bytes", h.maxSize)))
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "solo se permiten imágenes"))
		return
	}

	folder := strings.Trim(c.DefaultPostForm("folder", "images"), "/")
	if !storage.ValidFolder(folder) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "carpeta de destino inválida"))
		return
	}
	stored, err := h.storage.Save(folder, header.Filename, data)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}
	response.Created(c, stored)
}

// Delete godoc
// @Summary Delete an uploaded file by its public URL
// @Tags Uploads
// @Param url query string true "Public file URL"
// @Success 204
// @Security BearerAuth
// @Router /uploads [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "url query parameter is required"))
		return
	}
	relPath := h.storage.PathFromURL(rawURL)
	if relPath == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "url does not point at an uploaded file"))
		return
	}
	if err := h.storage.Delete(relPath); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file"))
		return
	}
	response.NoContent(c)
}
