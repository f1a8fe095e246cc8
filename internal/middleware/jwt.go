package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/models"
	"github.com/smarthealthy/tracker-api/internal/service"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/response"
)

// ContextClaimsKey is the gin context key storing session claims.
const ContextClaimsKey = "sessionClaims"

// JWT protects routes by requiring a valid session token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// RequireStudent gates routes that act on the calling student's ledger.
func RequireStudent() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || claims.Role != models.RoleStudent || claims.StudentID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student session required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTeacher gates the station administration and transfer routes.
func RequireTeacher() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil || claims.Role != models.RoleTeacher {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "teacher session required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Claims returns the session claims stored in the gin context, or nil.
func Claims(c *gin.Context) *models.SessionClaims {
	if v, exists := c.Get(ContextClaimsKey); exists {
		if claims, ok := v.(*models.SessionClaims); ok {
			return claims
		}
	}
	return nil
}
