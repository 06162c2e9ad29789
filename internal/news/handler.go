package news

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"news-classifier/internal/shared/apperr"
	"news-classifier/internal/shared/server/respond"
)

// FormField is the form field carrying the text to analyze.
const FormField = "news"

// Handler wires HTTP handlers to the news service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the analysis and store diagnostic routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/analyze", h.analyze)
	r.POST("/test-cloudant", h.testStore)
	r.GET("/db-status", h.dbStatus)
}

func (h *Handler) analyze(c *gin.Context) {
	result, err := h.Svc.Analyze(c.Request.Context(), c.PostForm(FormField))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Raw(c, http.StatusOK, result)
}

func (h *Handler) testStore(c *gin.Context) {
	result, err := h.Svc.ProbeStore(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) dbStatus(c *gin.Context) {
	report, err := h.Svc.StoreStatus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, report)
}

func writeError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		respond.Error(c, appErr.Status(), appErr.Message)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "Internal server error")
}
