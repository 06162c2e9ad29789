package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"news-classifier/internal/shared/telemetry"
)

// Logging attaches a request-scoped logger to the request context and emits
// one structured entry per completed request.
func Logging(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With(zap.String("request_id", RequestIDFromContext(c)))
		c.Request = c.Request.WithContext(telemetry.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		reqLogger.Info("request.complete",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
	}
}
