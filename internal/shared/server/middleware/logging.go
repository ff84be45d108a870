package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"paper-review/internal/shared/telemetry"
)

// Logging emits a structured log per request. Progress polling is logged at
// debug level only.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"session_id":  SessionIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if raw, ok := c.Get("uploadStatus"); ok {
			fields["upload_status"] = raw
		}
		if c.FullPath() == "/progress" {
			telemetry.Debug("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
