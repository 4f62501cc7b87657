package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/middleware"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/service"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Subjects     *SubjectHandler
	Resources    *ResourceHandler
	Publications *PublicationHandler
	School       *SchoolHandler
	Auth         *AuthHandler
	Backup       *BackupHandler
	Uploads      *UploadHandler
	Events       *EventsHandler
}

// RegisterRoutes mounts the API under prefix. Reads are public; writes sit
// behind the JWT gate except the engagement endpoints (likes, comments),
// which visitors use.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, authService *service.AuthService) {
	api := r.Group(prefix)

	api.GET("/subjects", h.Subjects.List)
	api.GET("/resources", h.Resources.List)
	api.GET("/resources/:id", h.Resources.Get)
	api.GET("/resources/:id/download", h.Resources.Download)
	api.POST("/resources/:id/like", h.Resources.Like)
	api.GET("/publications", h.Publications.List)
	api.POST("/publications/:id/like", h.Publications.Like)
	api.POST("/publications/:id/comments", h.Publications.Comment)
	api.GET("/school", h.School.GetInfo)
	api.GET("/theme", h.School.GetTheme)
	api.GET("/stats", h.School.Stats)
	api.GET("/events", h.Events.Stream)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/auth/reset-password", h.Auth.ResetPassword)

	admin := api.Group("", middleware.JWT(authService))
	admin.GET("/auth/me", h.Auth.Me)

	admin.POST("/subjects", h.Subjects.Create)
	admin.PATCH("/subjects/:id", h.Subjects.Update)
	admin.DELETE("/subjects/:id", h.Subjects.Delete)

	admin.POST("/resources", h.Resources.Create)
	admin.PATCH("/resources/:id", h.Resources.Update)
	admin.DELETE("/resources/:id", h.Resources.Delete)

	admin.POST("/publications", h.Publications.Create)
	admin.PATCH("/publications/:id", h.Publications.Update)
	admin.DELETE("/publications/:id", h.Publications.Delete)

	admin.PATCH("/school", h.School.UpdateInfo)
	admin.PUT("/theme", h.School.UpdateTheme)

	admin.GET("/backup/export", h.Backup.Export)
	admin.POST("/backup/import", h.Backup.Import)
	admin.GET("/backup/catalog.pdf", h.Backup.CatalogPDF)
	admin.GET("/backup/catalog.csv", h.Backup.CatalogCSV)

	admin.POST("/uploads", h.Uploads.Upload)
	admin.DELETE("/uploads", h.Uploads.Delete)
}
