package usage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestRecordAndSummarize(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	for _, rec := range []struct {
		user, format string
		shared       bool
	}{
		{"u1", "pdf", false},
		{"u1", "PDF", true},
		{"u1", "docx", false},
		{"u2", "pdf", false},
	} {
		if err := svc.Record(ctx, rec.user, "r1", rec.format, rec.shared); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	sum, err := svc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 3 || sum.ByFormat["pdf"] != 2 || sum.ByFormat["docx"] != 1 || sum.Shared != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	n, err := svc.Count(ctx, "nobody")
	if err != nil || n != 0 {
		t.Fatalf("expected 0 downloads, got %d (%v)", n, err)
	}
}

func TestRecordRejectsIncompleteDownloads(t *testing.T) {
	svc := NewService()
	if err := svc.Record(context.Background(), "u1", "", "pdf", false); !errors.Is(err, ErrInvalidDownload) {
		t.Fatalf("expected ErrInvalidDownload, got %v", err)
	}
	if err := svc.Record(context.Background(), " ", "r1", "pdf", false); !errors.Is(err, ErrInvalidDownload) {
		t.Fatalf("expected ErrInvalidDownload, got %v", err)
	}
}

func TestPGStoreRecordAndSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc := NewPostgresService(NewPGStore(db))
	svc.Now = func() time.Time { return now }

	mock.ExpectExec("INSERT INTO downloads").
		WithArgs(sqlmock.AnyArg(), "u1", "r1", "docx", true, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM downloads").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"format", "count", "shared"}).
			AddRow("docx", 4, 1).
			AddRow("pdf", 2, 0))

	if err := svc.Record(context.Background(), "u1", "r1", "docx", true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	sum, err := svc.Summary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Total != 6 || sum.Shared != 1 || sum.ByFormat["pdf"] != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestUsageHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService()
	_ = svc.Record(context.Background(), "guest:g1", "r1", "pdf", false)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("userId", id)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usage", nil)
	req.Header.Set("X-Test-User", "guest:g1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data struct {
			Downloads Summary `json:"downloads"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Downloads.Total != 1 {
		t.Fatalf("expected 1 download, got %+v", body.Data.Downloads)
	}
}
