package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 envelope. When the client has
// already gone away, or the handler began writing (a streamed download), the
// panic is only logged.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, _ := rec.(error)
			brokenPipe := errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)

			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"method":     c.Request.Method,
				"route":      c.FullPath(),
				"panic":      rec,
			}
			if brokenPipe {
				telemetry.Warn("http.client_gone", fields)
				c.Abort()
				return
			}
			fields["stack"] = string(debug.Stack())
			telemetry.Error("http.panic", fields)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
		}()
		c.Next()
	}
}
