package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"proofok-api/utils"
)

// RequireMonitorToken guards operator routes with a token checked against a
// bcrypt hash. The token is read from the X-Monitor-Token header or the
// "token" query parameter. An empty hash disables the routes.
func RequireMonitorToken(tokenHash string) gin.HandlerFunc {
	hash := strings.TrimSpace(tokenHash)
	return func(c *gin.Context) {
		if hash == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Monitor is disabled"})
			c.Abort()
			return
		}

		token := c.GetHeader("X-Monitor-Token")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Monitor token is required"})
			c.Abort()
			return
		}

		if !utils.CheckMonitorToken(hash, token) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
