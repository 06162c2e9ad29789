package news

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"news-classifier/internal/shared/apperr"
)

func TestClassifyAnalysisError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		kind    apperr.Kind
		status  int
		message string
	}{
		{
			name:    "unauthorized any case",
			err:     errors.New("Error: Unauthorized, Status code: 401"),
			kind:    apperr.KindAuth,
			status:  http.StatusUnauthorized,
			message: "Invalid API credentials. Check your Watson NLU API key.",
		},
		{
			name:    "not enough text",
			err:     errors.New("Error: NOT ENOUGH TEXT for language id, Status code: 422"),
			kind:    apperr.KindValidation,
			status:  http.StatusBadRequest,
			message: "Not enough text for analysis. Please provide more content.",
		},
		{
			name:    "quota",
			err:     errors.New("monthly Quota exceeded"),
			kind:    apperr.KindRateLimit,
			status:  http.StatusTooManyRequests,
			message: "API usage limit reached. Try again later.",
		},
		{
			name:    "limit",
			err:     errors.New("rate limit hit"),
			kind:    apperr.KindRateLimit,
			status:  http.StatusTooManyRequests,
			message: "API usage limit reached. Try again later.",
		},
		{
			name:    "unauthorized wins over limit",
			err:     errors.New("unauthorized: key over limit"),
			kind:    apperr.KindAuth,
			status:  http.StatusUnauthorized,
			message: "Invalid API credentials. Check your Watson NLU API key.",
		},
		{
			name:    "unknown keeps upstream message",
			err:     errors.New("Error: internal error, Status code: 500"),
			kind:    apperr.KindUnknownAnalysis,
			status:  http.StatusInternalServerError,
			message: "Analysis failed: Error: internal error, Status code: 500",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ClassifyAnalysisError(tt.err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.status, got.Status())
			assert.Equal(t, tt.message, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
