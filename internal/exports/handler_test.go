package exports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/server/middleware"
)

func newExportRouter(f *exportFixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(middleware.AuthConfig{Public: []string{"/api/v1/resumes/share/"}}))
	NewHandler(f.svc).RegisterRoutes(api)
	return r
}

func TestHandlerPDFHeaders(t *testing.T) {
	f := newExportFixture(t)
	doc := f.createFor(t, "guest:g1", "")
	r := newExportRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+doc.ID+"/export/pdf", nil)
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != ContentTypePDF {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="Ada_Lovelace_CV.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("expected no-store on pdf")
	}
	if rec.Header().Get("Content-Length") == "" {
		t.Fatalf("expected content length")
	}
}

func TestHandlerExportFailure(t *testing.T) {
	f := newExportFixture(t)
	doc := f.createFor(t, "guest:g1", "")
	f.renderer.err = errors.New("chrome crashed")
	r := newExportRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+doc.ID+"/export/pdf", nil)
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != "export_failed" {
		t.Fatalf("expected export_failed, got %q", payload.Error.Code)
	}
}

func TestHandlerPDFFromHTMLRequiresCSS(t *testing.T) {
	f := newExportFixture(t)
	doc := f.createFor(t, "guest:g1", "")
	r := newExportRouter(f)

	body, _ := json.Marshal(map[string]string{"html": "<p>hi</p>"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+doc.ID+"/export/pdf-html", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerSharedDOCXWithoutIdentity(t *testing.T) {
	f := newExportFixture(t)
	doc := f.create(t, "")
	st, err := f.docs.Publish(context.Background(), "u1", doc.ID, resumes.PublishInput{Consent: true})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	r := newExportRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/share/"+st.ShareID+"/export/docx", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasSuffix(rec.Header().Get("Content-Disposition"), `.docx"`) {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if rec.Header().Get("Cache-Control") == "no-store" {
		t.Fatalf("docx responses are cacheable")
	}
}
