package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"news-classifier/internal/shared/server/respond"
	"news-classifier/internal/shared/telemetry"
)

// Recovery recovers from panics and answers a generic 500 without leaking
// the panic value to the caller.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.FromContext(c.Request.Context()).Error("Internal server error",
					zap.Any("error", rec),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				respond.Error(c, http.StatusInternalServerError, "Internal server error")
			}
		}()
		c.Next()
	}
}
