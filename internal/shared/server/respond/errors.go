package respond

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"news-classifier/internal/shared/telemetry"
)

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, message string) {
	telemetry.FromContext(c.Request.Context()).Warn("http.error",
		zap.Int("status", status),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
