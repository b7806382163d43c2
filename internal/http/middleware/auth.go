package middleware

import (
	"net/http"

	"travelcheckout/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
)

// RequireAuth rejects requests without a valid bearer token and stores the user id.
func RequireAuth(identity services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := identity.ParseToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message":    err.Error(),
				"code":       "unauthorized",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// GetUserID returns the authenticated user id, 0 when none.
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
