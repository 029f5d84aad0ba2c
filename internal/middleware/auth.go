package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/craftbay/marketplace-api/internal/service"
)

const (
	// ContextUserID and ContextEmail are the gin context keys carrying the
	// verified caller identity.
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// Auth verifies the bearer token on protected routes and stores the caller
// identity on the request context.
func Auth(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		ident, err := identity.VerifyToken(raw)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, ident.UserID)
		c.Set(ContextEmail, ident.Email)
		c.Next()
	}
}

// CallerID returns the authenticated caller's userId, set by Auth.
func CallerID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func unauthorized(c *gin.Context, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": desc})
}
