package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/service"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/response"
)

// ResourceHandler handles downloadable study material endpoints.
type ResourceHandler struct {
	dal     *dal.DAL
	metrics *service.MetricsService
}

// NewResourceHandler constructs a resource handler. metrics may be nil.
func NewResourceHandler(d *dal.DAL, metrics *service.MetricsService) *ResourceHandler {
	return &ResourceHandler{dal: d, metrics: metrics}
}

// List godoc
// @Summary List resources, newest first
// @Tags Resources
// @Produce json
// @Param subject_id query string false "Filter by subject"
// @Param tags query string false "Comma-separated tags, any-of"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	filter := models.ResourceFilter{
		SubjectID: c.Query("subject_id"),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	if tags := c.Query("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	resources, err := h.dal.GetResources(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resources)
}

// Get godoc
// @Summary Get resource by id
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.dal.GetResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resource)
}

// Download godoc
// @Summary Count a download and redirect to the file
// @Tags Resources
// @Param id path string true "Resource ID"
// @Success 302
// @Router /resources/{id}/download [get]
func (h *ResourceHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	resource, err := h.dal.GetResource(ctx, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.dal.IncrementDownloads(ctx, resource.ID); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordDownload()
	c.Redirect(http.StatusFound, resource.URL)
}

// Like godoc
// @Summary Like a resource
// @Tags Resources
// @Param id path string true "Resource ID"
// @Success 204
// @Router /resources/{id}/like [post]
func (h *ResourceHandler) Like(c *gin.Context) {
	if err := h.dal.LikeResource(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Create godoc
// @Summary Create resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body dal.CreateResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	var req dal.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.dal.AddResource(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// Update godoc
// @Summary Update resource fields
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body dal.UpdateResourceRequest true "Partial resource payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resources/{id} [patch]
func (h *ResourceHandler) Update(c *gin.Context) {
	var req dal.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.dal.UpdateResource(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resource)
}

// Delete godoc
// @Summary Delete resource
// @Tags Resources
// @Param id path string true "Resource ID"
// @Success 204
// @Security BearerAuth
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Delete(c *gin.Context) {
	if err := h.dal.DeleteResource(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
