package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-Guest-Id, X-Request-Id, X-Share-Password"
	// Downloads need Content-Disposition for the file name; clients back off on Retry-After.
	corsExposed = "X-Request-Id, Content-Disposition, Content-Length, Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining"
)

// originSet matches exact origins and "https://*.example.com" style wildcards.
type originSet struct {
	exact    map[string]struct{}
	suffixes []struct{ scheme, suffix string }
}

func newOriginSet(origins []string) originSet {
	set := originSet{exact: make(map[string]struct{})}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if scheme, host, ok := strings.Cut(o, "://*."); ok {
			set.suffixes = append(set.suffixes, struct{ scheme, suffix string }{scheme + "://", "." + host})
			continue
		}
		set.exact[o] = struct{}{}
	}
	return set
}

func (s originSet) allows(origin string) bool {
	if _, ok := s.exact[origin]; ok {
		return true
	}
	for _, w := range s.suffixes {
		rest, ok := strings.CutPrefix(origin, w.scheme)
		if ok && strings.HasSuffix(rest, w.suffix) && len(rest) > len(w.suffix) {
			return true
		}
	}
	return false
}

// CORS answers preflights and decorates responses for allowed origins.
// Credentials are allowed, so origins are echoed rather than "*".
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := newOriginSet(allowedOrigins)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if origin != "" && origins.allows(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposed)
			h.Set("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
