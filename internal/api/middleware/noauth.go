package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for when AUTH_MODE=none.
// Requests without an X-User-ID header act on the shared local user.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = "local"
		}
		c.Set("user_id", userID)
		c.Next()
	}
}
