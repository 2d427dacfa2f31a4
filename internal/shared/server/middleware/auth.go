package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	isGuestKey   = "isGuest"

	// GuestPrefix namespaces guest identities apart from account subjects.
	GuestPrefix = "guest:"
)

var guestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	Verify(raw string) (auth.Claims, error)
}

// AuthConfig selects how callers are identified.
type AuthConfig struct {
	// Tokens verifies bearer tokens; nil rejects every Authorization header.
	Tokens TokenVerifier
	// Public path prefixes pass through without identity.
	Public []string
}

// Auth resolves the caller from a bearer token or the X-Guest-Id header and
// stores it on the context. A token that is present but invalid is rejected
// even when a guest header is also sent.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublic(c.Request.URL.Path, cfg.Public) {
			c.Next()
			return
		}

		if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || cfg.Tokens == nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			claims, err := cfg.Tokens.Verify(strings.TrimSpace(token))
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			c.Set(userIDKey, claims.Subject)
			c.Set(userEmailKey, claims.Email)
			c.Set(userNameKey, claims.Name)
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		switch {
		case guestID == "":
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		case !guestIDPattern.MatchString(guestID):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid guest id", nil)
			return
		}
		c.Set(userIDKey, GuestPrefix+guestID)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

func isPublic(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// UserIDFromContext fetches the user ID set by Auth.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}

// UserEmailFromContext fetches the token email, if any.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userEmailKey)
}

// UserNameFromContext fetches the token display name, if any.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userNameKey)
}

// IsGuest reports whether the caller authenticated with a guest header.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	return c.GetBool(isGuestKey)
}
