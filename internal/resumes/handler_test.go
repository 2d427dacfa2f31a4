package resumes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
)

func newTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := newFixture(t)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(middleware.AuthConfig{Public: []string{"/api/v1/resumes/share/"}}))
	NewHandler(f.svc).RegisterRoutes(api)
	return r, f
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, r http.Handler, method, path, guest string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if guest != "" {
		req.Header.Set("X-Guest-Id", guest)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func createViaAPI(t *testing.T, r http.Handler, guest string, body any) documentResponse {
	t.Helper()
	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/resumes", guest, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc documentResponse
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

func TestHandlerCreateAndGet(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{
		"title":       "Platform Engineer",
		"template_id": "modern",
		"content":     map[string]any{"personal": map[string]any{"fullName": "Linus"}},
	})
	if doc.TemplateID != "modern" || doc.Version != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}

	rec, env := doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+doc.ID, "g1", nil)
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 success, got %d: %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("passwordHash")) {
		t.Fatalf("response leaks share password hash: %s", rec.Body.String())
	}

	rec, env = doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+doc.ID, "g2", nil)
	if rec.Code != http.StatusNotFound || env.Error.Code != "not_found" {
		t.Fatalf("expected 404 for another guest, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerRequiresIdentity(t *testing.T) {
	r, _ := newTestRouter(t)
	rec, _ := doJSON(t, r, http.MethodGet, "/api/v1/resumes", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandlerCreateValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/resumes", "g1", map[string]any{
		"customization": map[string]any{"primaryColor": "red"},
	})
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected 400 validation_error, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.Error.Details) == 0 {
		t.Fatalf("expected field details")
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/api/v1/resumes", "g1", map[string]any{"templateId": "bad id!"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed template id, got %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodPost, "/api/v1/resumes", "g1", map[string]any{"templateId": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown template, got %d", rec.Code)
	}
}

func TestHandlerUpdateEmptyBody(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{})

	rec, _ := doJSON(t, r, http.MethodPut, "/api/v1/resumes/"+doc.ID, "g1", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerListAndStats(t *testing.T) {
	r, _ := newTestRouter(t)
	createViaAPI(t, r, "g1", map[string]any{"title": "One"})
	createViaAPI(t, r, "g1", map[string]any{"title": "Two"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes?limit=1&sort=title&order=asc", nil)
	req.Header.Set("X-Guest-Id", "g1")
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Data       []Summary `json:"data"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].Title != "One" || list.Pagination.Total != 2 || list.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}

	rec, env := doJSON(t, r, http.MethodGet, "/api/v1/resumes/stats", "g1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st Stats
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.Total != 2 {
		t.Fatalf("expected 2 resumes, got %+v", st)
	}
}

func TestHandlerVersionFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{})

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+doc.ID+"/version", "g1", map[string]any{"comment": "first"})
	if rec.Code != http.StatusOK {
		t.Fatalf("save version: %d %s", rec.Code, rec.Body.String())
	}
	var saved struct {
		CurrentVersion int `json:"currentVersion"`
		TotalVersions  int `json:"totalVersions"`
	}
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.CurrentVersion != 2 || saved.TotalVersions != 1 {
		t.Fatalf("unexpected version result: %+v", saved)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+doc.ID+"/version", "g1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save version without body: %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+doc.ID+"/restore/42", "g1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown version, got %d", rec.Code)
	}

	rec, env = doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+doc.ID+"/compare/1/current", "g1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("compare: %d %s", rec.Code, rec.Body.String())
	}
	var cmp comparisonResponse
	if err := json.Unmarshal(env.Data, &cmp); err != nil {
		t.Fatalf("decode compare: %v", err)
	}
	if cmp.Version1.Version != 1 || cmp.Version2.Version != 3 || cmp.Template.ID != "default" {
		t.Fatalf("unexpected comparison: %+v", cmp)
	}
}

func TestHandlerShareFlow(t *testing.T) {
	r, f := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{"title": "Public"})

	rec, env := doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+doc.ID+"/share", "g1", map[string]any{"consent": false})
	if rec.Code != http.StatusBadRequest || env.Error.Code != "consent_required" {
		t.Fatalf("expected consent_required, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+doc.ID+"/share", "g1", map[string]any{
		"consent":   true,
		"password":  "open sesame",
		"expiresIn": 1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: %d %s", rec.Code, rec.Body.String())
	}
	var st shareStateResponse
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode share state: %v", err)
	}
	if !st.IsPublic || !st.Settings.HasPassword || st.ShareID == "" {
		t.Fatalf("unexpected share state: %+v", st)
	}

	shared := "/api/v1/resumes/share/" + st.ShareID
	rec, env = doJSON(t, r, http.MethodGet, shared, "", nil)
	if rec.Code != http.StatusUnauthorized || env.Error.Code != "unauthorized" {
		t.Fatalf("expected 401 without password, got %d: %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, shared, nil)
	req.Header.Set("X-Share-Password", "open sesame")
	out := httptest.NewRecorder()
	r.ServeHTTP(out, req)
	if out.Code != http.StatusOK {
		t.Fatalf("expected 200 with header password, got %d: %s", out.Code, out.Body.String())
	}

	f.advance(48 * time.Hour)
	rec, env = doJSON(t, r, http.MethodGet, shared+"?password=open%20sesame", "", nil)
	if rec.Code != http.StatusGone || env.Error.Code != "expired" {
		t.Fatalf("expected 410, got %d: %s", rec.Code, rec.Body.String())
	}

	rec, env = doJSON(t, r, http.MethodPut, "/api/v1/resumes/"+doc.ID+"/share", "g1", map[string]any{
		"password":  nil,
		"expiresIn": nil,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update share: %d %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode share state: %v", err)
	}
	if st.Settings.HasPassword || st.Settings.ExpiresAt != nil {
		t.Fatalf("expected password and expiry cleared: %+v", st.Settings)
	}

	rec, _ = doJSON(t, r, http.MethodGet, shared, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open share after clearing gates, got %d", rec.Code)
	}
}

func TestHandlerPhotoUpload(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(pngPixel); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/"+doc.ID+"/photo", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+doc.ID+"/photo", nil)
	req.Header.Set("X-Guest-Id", "g1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("fetch photo: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.Equal(rec.Body.Bytes(), pngPixel) {
		t.Fatalf("photo bytes differ")
	}
}

func TestHandlerPreviewHTML(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{
		"content": map[string]any{"personal": map[string]any{"fullName": "Margaret Hamilton"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+doc.ID+"/preview.html", nil)
	req.Header.Set("X-Guest-Id", "g1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview.html: %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Margaret Hamilton")) {
		t.Fatalf("expected name in preview")
	}

	rec, env := doJSON(t, r, http.MethodGet, "/api/v1/resumes/"+doc.ID+"/preview", "g1", nil)
	if rec.Code != http.StatusOK || len(env.Data) == 0 {
		t.Fatalf("preview: %d", rec.Code)
	}
}

func TestHandlerMoveEntry(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{
		"content": map[string]any{"experience": []map[string]any{
			{"id": "a", "jobTitle": "One"}, {"id": "b", "jobTitle": "Two"}, {"id": "c", "jobTitle": "Three"},
		}},
	})
	path := "/api/v1/resumes/" + doc.ID + "/sections/experience/order"

	rec, env := doJSON(t, r, http.MethodPut, path, "g1", map[string]any{"from": 2, "to": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: %d %s", rec.Code, rec.Body.String())
	}
	var got documentResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(got.Content.Experience) != 3 || got.Content.Experience[0].ID != "c" || got.Content.Experience[2].ID != "b" {
		t.Fatalf("unexpected order: %+v", got.Content.Experience)
	}

	rec, _ = doJSON(t, r, http.MethodPut, path, "g1", map[string]any{"from": 0, "to": 5})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range move, got %d", rec.Code)
	}
}

func TestHandlerPublishUnknownDocument(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{"title": "Mine"})

	for _, guest := range []string{"g1", "g2"} {
		id := doc.ID
		if guest == "g1" {
			id = "missing"
		}
		rec, _ := doJSON(t, r, http.MethodPost, "/api/v1/resumes/"+id+"/share", guest, map[string]any{"consent": false})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404 before the consent check, got %d", guest, rec.Code)
		}
	}
}

func TestHandlerDeleteTwice(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createViaAPI(t, r, "g1", map[string]any{})

	rec, _ := doJSON(t, r, http.MethodDelete, "/api/v1/resumes/"+doc.ID, "g1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first delete: %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodDelete, "/api/v1/resumes/"+doc.ID, "g1", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}
