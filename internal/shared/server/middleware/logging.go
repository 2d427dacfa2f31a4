package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// Context keys handlers set to enrich the request log line.
const (
	ResumeIDKey = "resumeId"
	ShareIDKey  = "shareId"
)

// Logging emits one request.complete entry per request. Preflights are not
// logged; probe routes (/health, /metrics) log at debug.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"is_guest":    IsGuest(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString(ResumeIDKey); id != "" {
			fields["resume_id"] = id
		}
		if id := c.GetString(ShareIDKey); id != "" {
			fields["share_id"] = id
		}
		if isProbe(c.FullPath()) {
			telemetry.Debug("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}

func isProbe(route string) bool {
	return route == "/metrics" || strings.HasSuffix(route, "/health")
}
