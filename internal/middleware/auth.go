// Package middleware holds gin middleware shared by the HTTP server.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// InternalAuth protects the /internal route group. Callers must present
// the shared key in the X-Internal-API-Key header.
func InternalAuth(apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		// misconfigured deployments fail closed
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "server misconfigured: internal API key not set",
			})
		}
	}
	keyBytes := []byte(apiKey)

	return func(c *gin.Context) {
		presented := c.GetHeader("X-Internal-API-Key")
		if subtle.ConstantTimeCompare([]byte(presented), keyBytes) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
