package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/it-hub-api/internal/models"
	appErrors "github.com/noah-isme/it-hub-api/pkg/errors"
	"github.com/noah-isme/it-hub-api/pkg/response"
)

// RBAC admits the session account when allow accepts its role. Must run after Session.
func RBAC(allow func(models.UserRole) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allow(user.Role) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff admits every role except student.
func RequireStaff() gin.HandlerFunc {
	return RBAC(models.UserRole.IsStaff)
}
