package news

import (
	"strings"

	"news-classifier/internal/shared/apperr"
)

type classification struct {
	substrings []string
	kind       apperr.Kind
	message    string
}

// analysisFailures is matched in order against the lowercased upstream error
// text; the first row with a matching substring wins.
var analysisFailures = []classification{
	{
		substrings: []string{"unauthorized"},
		kind:       apperr.KindAuth,
		message:    "Invalid API credentials. Check your Watson NLU API key.",
	},
	{
		substrings: []string{"not enough text"},
		kind:       apperr.KindValidation,
		message:    "Not enough text for analysis. Please provide more content.",
	},
	{
		substrings: []string{"quota", "limit"},
		kind:       apperr.KindRateLimit,
		message:    "API usage limit reached. Try again later.",
	},
}

// ClassifyAnalysisError maps a failure from the analysis service onto the
// caller-facing taxonomy. Unmatched failures are UnknownAnalysisError and
// carry the upstream message.
func ClassifyAnalysisError(err error) *apperr.Error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, row := range analysisFailures {
		for _, s := range row.substrings {
			if strings.Contains(lower, s) {
				return apperr.Wrap(row.kind, row.message, err)
			}
		}
	}
	return apperr.Wrap(apperr.KindUnknownAnalysis, "Analysis failed: "+msg, err)
}
