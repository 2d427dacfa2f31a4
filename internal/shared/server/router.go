package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/exports"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/templates"
	"resume-builder/internal/usage"
)

// Rate limit groups.
const (
	groupDefault = "DEFAULT"
	groupExport  = "EXPORT"
	groupShare   = "SHARE"
)

// RouterDeps carries the handlers mounted under /api/{version}.
type RouterDeps struct {
	Config    config.Config
	Resumes   *resumes.Handler
	Exports   *exports.Handler
	Templates *templates.Handler
	Usage     *usage.Handler
	Limiter   *middleware.RateLimiter
	Tokens    middleware.TokenVerifier
	// Ready reports backing-store health for /health. Nil means always ready.
	Ready func(c *gin.Context) error
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	base := "/api/" + apiVersion(cfg.APIVersion)
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(middleware.AuthConfig{
			Tokens: deps.Tokens,
			Public: []string{
				base + "/health",
				base + "/templates",
				base + "/resumes/share/",
				"/metrics",
			},
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Fallback: groupDefault,
			GroupFor: rateGroup,
			Limiter:  deps.Limiter,
			Limits: map[string]middleware.Limit{
				groupDefault: {Rate: 10, Burst: 60},
				groupExport:  {Rate: 0.5, Burst: 10},
				groupShare:   {Rate: 5, Burst: 30},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group(base)
	api.GET("/health", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(c); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "unavailable", "dependency check failed", gin.H{"reason": err.Error()})
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	registerMeRoutes(api)
	if deps.Templates != nil {
		deps.Templates.RegisterRoutes(api)
	}
	if deps.Resumes != nil {
		deps.Resumes.RegisterRoutes(api)
	}
	if deps.Exports != nil {
		deps.Exports.RegisterRoutes(api)
	}
	if deps.Usage != nil {
		deps.Usage.RegisterRoutes(api)
	}

	return r
}

func rateGroup(c *gin.Context) string {
	path := c.FullPath()
	switch {
	case strings.Contains(path, "/export/"):
		return groupExport
	case strings.Contains(path, "/resumes/share/"):
		return groupShare
	default:
		return groupDefault
	}
}

func apiVersion(v string) string {
	v = strings.Trim(strings.TrimSpace(v), "/")
	if v == "" {
		return "v1"
	}
	return v
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
