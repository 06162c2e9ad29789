package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"news-classifier/internal/news"
	"news-classifier/internal/services/health"
	"news-classifier/internal/shared/metrics"
	"news-classifier/internal/shared/server/middleware"
	"news-classifier/internal/shared/server/respond"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Logger        *zap.Logger
	NewsHandler   *news.Handler
	HealthHandler *health.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		metrics.Middleware(),
		middleware.Recovery(),
	)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "Endpoint not found")
	})
	r.NoMethod(func(c *gin.Context) {
		respond.Error(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.SetHTMLTemplate(indexTemplate)
	r.GET("/", indexHandler)
	r.GET("/metrics", metrics.Handler())

	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(r)
	}
	if deps.NewsHandler != nil {
		deps.NewsHandler.RegisterRoutes(r)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
