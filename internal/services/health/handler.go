package health

import (
	"github.com/gin-gonic/gin"

	"news-classifier/internal/shared/server/respond"
)

// Handler serves GET /health.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the health route.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	status, report := h.Svc.Status()
	respond.JSON(c, status, report)
}
