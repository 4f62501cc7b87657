package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/dal"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
	appErrors "github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/errors"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/pkg/response"
)

// SchoolHandler serves the school information and theme singletons.
type SchoolHandler struct {
	dal *dal.DAL
}

// NewSchoolHandler constructs a school handler.
func NewSchoolHandler(d *dal.DAL) *SchoolHandler {
	return &SchoolHandler{dal: d}
}

// GetInfo godoc
// @Summary Get school information
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /school [get]
func (h *SchoolHandler) GetInfo(c *gin.Context) {
	info, err := h.dal.GetSchoolInfo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, info)
}

// UpdateInfo godoc
// @Summary Update school information fields
// @Tags School
// @Accept json
// @Produce json
// @Param payload body dal.UpdateSchoolInfoRequest true "Partial school info payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /school [patch]
func (h *SchoolHandler) UpdateInfo(c *gin.Context) {
	var req dal.UpdateSchoolInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	info, err := h.dal.UpdateSchoolInfo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, info)
}

// GetTheme godoc
// @Summary Get theme configuration
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /theme [get]
func (h *SchoolHandler) GetTheme(c *gin.Context) {
	cfg, err := h.dal.GetThemeConfig(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cfg)
}

// UpdateTheme godoc
// @Summary Replace theme configuration
// @Tags School
// @Accept json
// @Produce json
// @Param payload body models.ThemeConfig true "Theme configuration"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /theme [put]
func (h *SchoolHandler) UpdateTheme(c *gin.Context) {
	var cfg models.ThemeConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	saved, err := h.dal.UpdateThemeConfig(c.Request.Context(), cfg)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, saved)
}

// Stats godoc
// @Summary Site statistics
// @Tags School
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *SchoolHandler) Stats(c *gin.Context) {
	stats, err := h.dal.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}
