package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"splitledger-backend/services"
	"splitledger-backend/utils"
)

// AuthRequired validates the bearer token and stores the authenticated user
// ID in the request context.
func AuthRequired(tokens *services.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.Unauthorized(c, "Missing or malformed authorization header")
			c.Abort()
			return
		}

		userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(utils.ContextUserKey, userID)
		c.Next()
	}
}
