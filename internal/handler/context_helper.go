package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/middleware"
	"github.com/maxverstappen727-cell/UEN-idelfonso-vasquez/internal/models"
)

func currentUser(c *gin.Context) *models.UserInfo {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.UserInfo)
	if !ok {
		return nil
	}
	return user
}
