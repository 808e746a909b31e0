package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	logx "github.com/wismo-agent/server/pkg/logger"
)

// DevAPIKey is the development bypass used when no API key is configured.
const DevAPIKey = "dev"

// APIKeyAuth guards routes with a static X-API-Key header check.
func APIKeyAuth(expected string) gin.HandlerFunc {
	if expected == "" {
		expected = DevAPIKey
	}
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Missing or invalid X-API-Key",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logx.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}
