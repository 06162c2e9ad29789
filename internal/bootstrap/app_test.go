package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"news-classifier/internal/shared/apperr"
	"news-classifier/internal/shared/config"
)

func baseConfig() config.Config {
	return config.Config{
		Env:          "dev",
		NLUAPIKey:    "key",
		NLUURL:       "https://api.example.test/natural-language-understanding",
		NLUVersion:   "2023-03-25",
		NLUTimeout:   time.Second,
		StoreBackend: config.StoreCloudant,
		StoreTimeout: time.Second,
	}
}

func closedServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestBuildRequiresNLUConfiguration(t *testing.T) {
	cfg := baseConfig()
	cfg.NLUAPIKey = ""
	cfg.NLUURL = ""

	_, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
	assert.Contains(t, err.Error(), "NLU_APIKEY")
	assert.Contains(t, err.Error(), "NLU_URL")
}

func TestBuildFailsOnInvalidNLUURL(t *testing.T) {
	cfg := baseConfig()
	cfg.NLUURL = "not a url"

	_, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrServiceInit)
}

func TestBuildWithoutStoreCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	app, err := Build(context.Background(), baseConfig(), zap.New(core))
	require.NoError(t, err)
	assert.Nil(t, app.Store)
	assert.NotNil(t, app.NLU)
	assert.NotNil(t, app.Router)
	assert.Equal(t, "Not available", app.StoreStatus())

	entries := logs.FilterMessage("Missing cloudant credentials - database storage disabled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.ElementsMatch(t,
		[]interface{}{"CLOUDANT_USERNAME", "CLOUDANT_APIKEY", "CLOUDANT_URL", "CLOUDANT_DB"},
		entries[0].ContextMap()["missing"])
	require.NoError(t, app.Close())
}

func TestBuildSurvivesStoreConnectFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := baseConfig()
	cfg.CloudantUsername = "user"
	cfg.CloudantAPIKey = "key"
	cfg.CloudantURL = closedServerURL(t)
	cfg.IAMTokenURL = closedServerURL(t)
	cfg.StoreDB = "news_analyses"

	app, err := Build(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)
	assert.Nil(t, app.Store)

	entries := logs.FilterMessage("Failed to initialize document store - database storage disabled").All()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ContextMap()["category"])
}

func TestBuildWithMemoryStore(t *testing.T) {
	cfg := baseConfig()
	cfg.StoreBackend = config.StoreMemory
	cfg.StoreDB = "news_analyses"

	app, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, app.Store)
	assert.Equal(t, "news_analyses", app.Store.Name())
	assert.Equal(t, "Connected", app.StoreStatus())
	assert.Same(t, app.NewsService.NLU, app.NLU)

	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"news-classifier","services":{"nlu":"healthy","cloudant":"healthy"}}`, resp.Body.String())
}
