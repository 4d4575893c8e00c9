package middleware

import (
	"github.com/dotaevolution/presence-api/internal/database"
	apierrors "github.com/dotaevolution/presence-api/internal/errors"
	"github.com/dotaevolution/presence-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireAdmin checks that the authenticated user has the admin role.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !user.IsAdmin() {
			apierrors.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
