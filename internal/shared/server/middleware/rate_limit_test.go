package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func limitedRouter(limiter *RateLimiter, limits map[string]Limit) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(userIDKey, id)
		}
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		Limiter: limiter,
		Limits:  limits,
		GroupFor: func(c *gin.Context) string {
			if strings.Contains(c.FullPath(), "/export/") {
				return "EXPORT"
			}
			return ""
		},
	}))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }
	r.GET("/api/v1/resumes", ok)
	r.POST("/api/v1/resumes/:id/export/pdf", ok)
	return r
}

func hit(r http.Handler, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitGroupsHaveSeparateBuckets(t *testing.T) {
	clock := newClock()
	r := limitedRouter(NewRateLimiter(clock.Now), map[string]Limit{
		"DEFAULT": {Rate: 1, Burst: 3},
		"EXPORT":  {Rate: 0.5, Burst: 1},
	})

	if rec := hit(r, http.MethodPost, "/api/v1/resumes/r1/export/pdf", "guest:a"); rec.Code != http.StatusOK {
		t.Fatalf("first export expected 200, got %d", rec.Code)
	}
	if rec := hit(r, http.MethodPost, "/api/v1/resumes/r1/export/pdf", "guest:a"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second export expected 429, got %d", rec.Code)
	}
	for i := 0; i < 3; i++ {
		rec := hit(r, http.MethodGet, "/api/v1/resumes", "guest:a")
		if rec.Code != http.StatusOK {
			t.Fatalf("list %d expected 200, got %d", i+1, rec.Code)
		}
		if got, want := rec.Header().Get("X-RateLimit-Remaining"), string(rune('2'-i)); got != want {
			t.Fatalf("list %d remaining = %q, want %q", i+1, got, want)
		}
	}
	if rec := hit(r, http.MethodPost, "/api/v1/resumes/r1/export/pdf", "guest:b"); rec.Code != http.StatusOK {
		t.Fatalf("other caller expected own bucket, got %d", rec.Code)
	}

	clock.Advance(2 * time.Second)
	if rec := hit(r, http.MethodPost, "/api/v1/resumes/r1/export/pdf", "guest:a"); rec.Code != http.StatusOK {
		t.Fatalf("export after refill expected 200, got %d", rec.Code)
	}
}

func TestRateLimitRejectionCarriesRetryAfter(t *testing.T) {
	clock := newClock()
	r := limitedRouter(NewRateLimiter(clock.Now), map[string]Limit{
		"DEFAULT": {Rate: 0.25, Burst: 1},
	})

	if rec := hit(r, http.MethodGet, "/api/v1/resumes", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", rec.Code)
	}
	rec := hit(r, http.MethodGet, "/api/v1/resumes", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "4" {
		t.Fatalf("expected Retry-After 4, got %q", got)
	}

	var payload struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Success || payload.Error.Code != "rate_limited" {
		t.Fatalf("unexpected envelope: %+v", payload)
	}
	if payload.Error.Details["retryAfterMs"] != float64(4000) {
		t.Fatalf("expected retryAfterMs=4000, got %v", payload.Error.Details["retryAfterMs"])
	}
}

func TestRateLimitUnknownGroupPassesThrough(t *testing.T) {
	r := limitedRouter(NewRateLimiter(nil), map[string]Limit{
		"EXPORT": {Rate: 1, Burst: 1},
	})
	for i := 0; i < 5; i++ {
		if rec := hit(r, http.MethodGet, "/api/v1/resumes", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	clock := newClock()
	l := NewRateLimiter(clock.Now)
	limit := Limit{Rate: 1, Burst: 1}

	l.Take("old", limit)
	clock.Advance(bucketIdleTTL + time.Second)
	for i := 1; i < sweepEvery; i++ {
		l.Take("fresh", limit)
	}
	if l.Len() != 1 {
		t.Fatalf("expected idle bucket to be swept, have %d", l.Len())
	}
}

func TestNilRateLimiterAllows(t *testing.T) {
	var l *RateLimiter
	if d := l.Take("k", Limit{Rate: 1, Burst: 1}); !d.Allowed {
		t.Fatalf("nil limiter must allow")
	}
}
