package dessertserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request correlation id.
const HeaderRequestID = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a fresh UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// SepayAPIKey admits webhook calls whose Authorization header contains the shared key.
// Sepay sends "Apikey <key>"; any header containing the key is accepted.
func SepayAPIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if expected == "" || header == "" || !strings.Contains(header, expected) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, webhookFailure{Message: "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}
