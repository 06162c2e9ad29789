package news

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-classifier/internal/docstore/memory"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func postForm(r http.Handler, path, text string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set(FormField, text)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestAnalyzeEndpointReturnsResultVerbatim(t *testing.T) {
	r := newTestRouter(&Service{NLU: &fakeNLU{result: sampleResult}})

	resp := postForm(r, "/analyze", sampleText)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, string(sampleResult), resp.Body.String())
	assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		svc    *Service
		text   string
		status int
		body   string
	}{
		{
			name:   "whitespace only",
			svc:    &Service{NLU: &fakeNLU{result: sampleResult}},
			text:   "   ",
			status: http.StatusBadRequest,
			body:   "No text provided for analysis",
		},
		{
			name:   "fourteen characters",
			svc:    &Service{NLU: &fakeNLU{result: sampleResult}},
			text:   "abcdefghijklmn",
			status: http.StatusBadRequest,
			body:   "Text too short for meaningful analysis (minimum 15 characters)",
		},
		{
			name:   "analysis service absent",
			svc:    &Service{},
			text:   sampleText,
			status: http.StatusServiceUnavailable,
			body:   "Watson NLU service not available. Check your configuration.",
		},
		{
			name:   "bad credentials",
			svc:    &Service{NLU: &fakeNLU{err: errors.New("Error: Unauthorized, Status code: 401")}},
			text:   sampleText,
			status: http.StatusUnauthorized,
			body:   "Invalid API credentials. Check your Watson NLU API key.",
		},
		{
			name:   "quota",
			svc:    &Service{NLU: &fakeNLU{err: errors.New("Error: Quota exceeded, Status code: 403")}},
			text:   sampleText,
			status: http.StatusTooManyRequests,
			body:   "API usage limit reached. Try again later.",
		},
		{
			name:   "unknown",
			svc:    &Service{NLU: &fakeNLU{err: errors.New("Error: backend down, Status code: 502")}},
			text:   sampleText,
			status: http.StatusInternalServerError,
			body:   "Analysis failed: Error: backend down, Status code: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postForm(newTestRouter(tt.svc), "/analyze", tt.text)
			require.Equal(t, tt.status, resp.Code)
			assert.Equal(t, map[string]any{"error": tt.body}, decodeBody(t, resp))
		})
	}
}

func TestAnalyzeEndpointIgnoresStoreFailure(t *testing.T) {
	svc := &Service{
		NLU:   &fakeNLU{result: sampleResult},
		Store: &failingStore{createErr: errors.New("503 Service Unavailable")},
	}

	resp := postForm(newTestRouter(svc), "/analyze", sampleText)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, string(sampleResult), resp.Body.String())
}

func TestStoreEndpoints(t *testing.T) {
	store := memory.New("news_analyses")
	r := newTestRouter(&Service{NLU: &fakeNLU{result: sampleResult}, Store: store})

	resp := postForm(r, "/test-cloudant", "")
	require.Equal(t, http.StatusOK, resp.Code)
	probe := decodeBody(t, resp)
	assert.Equal(t, true, probe["success"])
	assert.Equal(t, float64(1), probe["total_documents"])
	assert.Equal(t, "Test document created successfully", probe["message"])
	assert.NotEmpty(t, probe["document_id"])

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/db-status", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	status := decodeBody(t, resp)
	assert.Equal(t, "news_analyses", status["database_name"])
	assert.Equal(t, float64(1), status["document_count"])
	assert.Equal(t, []any{probe["document_id"]}, status["recent_documents"])
}

func TestStoreEndpointsWithoutStore(t *testing.T) {
	r := newTestRouter(&Service{NLU: &fakeNLU{result: sampleResult}})

	resp := postForm(r, "/test-cloudant", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, map[string]any{"error": "Cloudant not initialized"}, decodeBody(t, resp))

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/db-status", nil))
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, map[string]any{"error": "Cloudant not initialized"}, decodeBody(t, resp))
}

func TestStoreEndpointsSurfaceFailures(t *testing.T) {
	r := newTestRouter(&Service{Store: &failingStore{listErr: errors.New("connection reset")}})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/db-status", nil))
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, map[string]any{"error": "Database status check failed: connection reset"}, decodeBody(t, resp))

	resp = postForm(r, "/test-cloudant", "")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, map[string]any{"error": "Cloudant test failed: connection reset"}, decodeBody(t, resp))
}
