package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/response"
)

// PublicationHandler handles news post endpoints.
type PublicationHandler struct {
	dal *dal.DAL
}

// NewPublicationHandler constructs a publication handler.
func NewPublicationHandler(d *dal.DAL) *PublicationHandler {
	return &PublicationHandler{dal: d}
}

// List godoc
// @Summary List publications, newest first
// @Tags Publications
// @Produce json
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Router /publications [get]
func (h *PublicationHandler) List(c *gin.Context) {
	limit := 0
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "0")); err == nil && v > 0 {
		limit = v
	}
	publications, err := h.dal.GetPublications(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, publications)
}

// Create godoc
// @Summary Create publication
// @Tags Publications
// @Accept json
// @Produce json
// @Param payload body dal.CreatePublicationRequest true "Publication payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /publications [post]
func (h *PublicationHandler) Create(c *gin.Context) {
	var req dal.CreatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	publication, err := h.dal.AddPublication(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, publication)
}

// Update godoc
// @Summary Update publication fields
// @Tags Publications
// @Accept json
// @Produce json
// @Param id path string true "Publication ID"
// @Param payload body dal.UpdatePublicationRequest true "Partial publication payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /publications/{id} [patch]
func (h *PublicationHandler) Update(c *gin.Context) {
	var req dal.UpdatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	publication, err := h.dal.UpdatePublication(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, publication)
}

// Delete godoc
// @Summary Delete publication
// @Tags Publications
// @Param id path string true "Publication ID"
// @Success 204
// @Security BearerAuth
// @Router /publications/{id} [delete]
func (h *PublicationHandler) Delete(c *gin.Context) {
	if err := h.dal.DeletePublication(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Like godoc
// @Summary Like a publication
// @Tags Publications
// @Param id path string true "Publication ID"
// @Success 204
// @Router /publications/{id}/like [post]
func (h *PublicationHandler) Like(c *gin.Context) {
	if err := h.dal.LikePublication(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Comment godoc
// @Summary Add a comment to a publication
// @Tags Publications
// @Accept json
// @Produce json
// @Param id path string true "Publication ID"
// @Param payload body dal.AddCommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Router /publications/{id}/comments [post]
func (h *PublicationHandler) Comment(c *gin.Context) {
	var req dal.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	publication, err := h.dal.AddComment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, publication)
}
