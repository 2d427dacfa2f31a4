package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

const (
	fallbackGroup = "DEFAULT"
	// Buckets untouched for bucketIdleTTL are dropped on the next sweep.
	bucketIdleTTL = 10 * time.Minute
	sweepEvery    = 512
)

// Limit is a token bucket: Rate tokens per second refilling up to Burst.
type Limit struct {
	Rate  float64
	Burst int
}

// RateLimitConfig maps route groups to limits. Requests are bucketed per
// caller (user id, or client IP before identity resolves) and group.
type RateLimitConfig struct {
	Limits   map[string]Limit
	Fallback string
	GroupFor func(*gin.Context) string
	Limiter  *RateLimiter
}

// Decision is the outcome of a single Take.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter holds in-process token buckets. It is safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	calls   int
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter returns an empty limiter; now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*bucket), now: now}
}

// RateLimit rejects callers that exhausted their group's bucket with 429 and
// a Retry-After header. Groups without a configured limit pass through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.Fallback == "" {
		cfg.Fallback = fallbackGroup
	}
	return func(c *gin.Context) {
		group := cfg.Fallback
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		limit, ok := cfg.Limits[group]
		if !ok {
			c.Next()
			return
		}

		caller := UserIDFromContext(c)
		if caller == "" {
			caller = "ip:" + c.ClientIP()
		}
		d := cfg.Limiter.Take(caller+"|"+group, limit)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if d.Allowed {
			c.Next()
			return
		}

		retryMs := max(d.RetryAfter.Milliseconds(), 1)
		c.Header("Retry-After", strconv.FormatInt((retryMs+999)/1000, 10))
		metrics.IncRateLimited(group)
		telemetry.Debug("http.rate_limited", map[string]any{
			"group":      group,
			"request_id": RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"retryAfterMs": retryMs,
		})
	}
}

// Take spends one token from key's bucket. A nil limiter or a non-positive
// limit always allows.
func (l *RateLimiter) Take(key string, limit Limit) Decision {
	if l == nil || limit.Rate <= 0 || limit.Burst <= 0 {
		return Decision{Allowed: true, Remaining: max(limit.Burst, 0)}
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(limit.Burst), seen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(limit.Burst), b.tokens+elapsed*limit.Rate)
	}
	b.seen = now

	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true, Remaining: int(b.tokens)}
	}
	wait := (1 - b.tokens) / limit.Rate
	return Decision{RetryAfter: time.Duration(math.Ceil(wait*1000)) * time.Millisecond}
}

// Len reports how many buckets are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.seen) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
}
