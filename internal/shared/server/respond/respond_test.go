package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	h(c)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestDataEnvelope(t *testing.T) {
	rec, body := run(t, func(c *gin.Context) { Data(c, http.StatusCreated, gin.H{"id": "r1"}) })
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "r1"}, body["data"])
	assert.NotContains(t, body, "pagination")
	assert.NotContains(t, body, "message")
}

func TestPageEnvelope(t *testing.T) {
	_, body := run(t, func(c *gin.Context) {
		Page(c, []string{"a"}, Pagination{Total: 11, Page: 2, Limit: 10, TotalPages: 2})
	})
	assert.Equal(t, map[string]any{"total": 11.0, "page": 2.0, "limit": 10.0, "totalPages": 2.0}, body["pagination"])
}

func TestMessageEnvelope(t *testing.T) {
	_, body := run(t, func(c *gin.Context) { Message(c, "Version saved successfully", nil) })
	assert.Equal(t, "Version saved successfully", body["message"])
	assert.Contains(t, body, "data")
}

func TestErrorAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	Error(c, http.StatusConflict, "conflict", "stale revision", gin.H{"revision": 3})

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "conflict", body.Error.Code)
	assert.Equal(t, "stale revision", body.Error.Message)
}
