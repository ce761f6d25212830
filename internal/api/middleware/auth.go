package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"greendrake/haven/internal/auth"
)

const (
	// ContextKeyAgentID holds the key for the agent ID in Gin context.
	ContextKeyAgentID = "agentID"
	// ContextKeyAgentName holds the key for the agent display name in Gin context.
	ContextKeyAgentName = "agentName"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Invalid or expired token: %v", err)})
			return
		}

		// Set agent info in context for handlers to use
		c.Set(ContextKeyAgentID, claims.AgentID)
		c.Set(ContextKeyAgentName, claims.AgentName)

		c.Next()
	}
}
