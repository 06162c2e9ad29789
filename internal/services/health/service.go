package health

import (
	"net/http"

	"news-classifier/internal/docstore"
	"news-classifier/internal/nlu"
)

const (
	StatusHealthy     = "healthy"
	StatusError       = "error"
	StatusUnavailable = "unavailable"

	ServiceName = "news-classifier"
)

// Report is the body of GET /health.
type Report struct {
	Status   string            `json:"status"`
	Service  string            `json:"service,omitempty"`
	Message  string            `json:"message,omitempty"`
	Services map[string]string `json:"services"`
}

// Service reports dependency state from handle presence alone.
type Service struct {
	NLU   nlu.Client
	Store docstore.Store
}

// NewService constructs a new health service.
func NewService(nluClient nlu.Client, store docstore.Store) *Service {
	return &Service{NLU: nluClient, Store: store}
}

// Status computes the report and its HTTP status. Only a missing analysis
// service degrades overall health.
func (s *Service) Status() (int, Report) {
	services := map[string]string{
		"nlu":      presence(s.NLU != nil),
		"cloudant": presence(s.Store != nil),
	}
	if s.NLU == nil {
		return http.StatusServiceUnavailable, Report{
			Status:   StatusError,
			Message:  "Watson NLU not initialized",
			Services: services,
		}
	}
	return http.StatusOK, Report{
		Status:   StatusHealthy,
		Service:  ServiceName,
		Services: services,
	}
}

func presence(ok bool) string {
	if ok {
		return StatusHealthy
	}
	return StatusUnavailable
}
