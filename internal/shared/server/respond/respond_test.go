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

func TestErrorWritesFlatBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusServiceUnavailable, "Cloudant not initialized")
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"error": "Cloudant not initialized"}, body)
}

func TestRawPassesPayloadThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	payload := json.RawMessage(`{"sentiment":{"document":{"score":0.5,"label":"positive"}}}`)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Raw(c, http.StatusOK, payload) })

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, string(payload), resp.Body.String())
	assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")
}
