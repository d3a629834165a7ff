package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/nordsaldo/bokforing_backend/models"
	"bitbucket.org/nordsaldo/bokforing_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Bearer token and puts the user's id and email
// into the request context. Routes registered behind it can rely on
// utils.GetUserIdFromContext.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}
		claim, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		// the redis-backed lookup also catches deactivated users
		user, err := models.GetUserByEmail(c.Request.Context(), claim.Email)
		if err != nil || user.ID != claim.ID || !*user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetUserIdInContext(c.Request.Context(), user.ID)
		ctx = utils.SetEmailInContext(ctx, user.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
