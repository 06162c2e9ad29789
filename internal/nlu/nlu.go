// Package nlu defines the contract for the external natural-language
// analysis service.
package nlu

import (
	"context"
	"encoding/json"
)

// Client analyzes free-form text. The returned document is the service's
// result, untouched.
type Client interface {
	Analyze(ctx context.Context, text string) (json.RawMessage, error)
}

// Features selects what the analysis service extracts.
type Features struct {
	Sentiment  *SentimentOptions  `json:"sentiment,omitempty"`
	Categories *CategoriesOptions `json:"categories,omitempty"`
	Keywords   *KeywordsOptions   `json:"keywords,omitempty"`
}

// SentimentOptions uses the service defaults.
type SentimentOptions struct{}

type CategoriesOptions struct {
	Limit int `json:"limit,omitempty"`
}

type KeywordsOptions struct {
	Limit int `json:"limit,omitempty"`
}

// DefaultFeatures requests sentiment, up to 3 categories and up to 5 keywords.
func DefaultFeatures() Features {
	return Features{
		Sentiment:  &SentimentOptions{},
		Categories: &CategoriesOptions{Limit: 3},
		Keywords:   &KeywordsOptions{Limit: 5},
	}
}
