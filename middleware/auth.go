package middleware

import (
	"net/http"
	"strings"

	"dorm-backend/services"
	"dorm-backend/utils"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Auth verifies the bearer token and stores the caller as a
// services.Principal on the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "missing bearer token", nil)
			return
		}
		claims, err := utils.ParseToken(secret, strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "error.unauthorized", "invalid or expired token", nil)
			return
		}
		c.Set(principalKey, services.Principal{UserID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RequireRole rejects callers whose role differs. Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c).Role != role {
			utils.JSONError(c, http.StatusForbidden, "error.forbidden", "insufficient role", nil)
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller, or the zero Principal.
func PrincipalFrom(c *gin.Context) services.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return services.Principal{}
	}
	p, _ := v.(services.Principal)
	return p
}
