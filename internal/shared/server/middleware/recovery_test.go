package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRecoveryReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error.Code != "internal" {
		t.Fatalf("unexpected body %q (%v)", rec.Body.String(), err)
	}
}

func TestRecoveryLeavesStartedResponseAlone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/stream", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})
	r.GET("/gone", func(*gin.Context) {
		panic(fmt.Errorf("write: %w", syscall.EPIPE))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "partial" {
		t.Fatalf("expected untouched partial response, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gone", nil))
	if strings.Contains(rec.Body.String(), "internal") {
		t.Fatalf("broken pipe must not write an error body")
	}
}

func TestRequestIDReusesWellFormedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/x", func(c *gin.Context) { seen = RequestIDFromContext(c) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "lb-12345678")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen != "lb-12345678" || rec.Header().Get("X-Request-Id") != seen {
		t.Fatalf("expected upstream id to be kept, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "bad id\nwith newline")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if len(seen) != 36 || rec.Header().Get("X-Request-Id") != seen {
		t.Fatalf("expected fresh uuid, got %q", seen)
	}
}
