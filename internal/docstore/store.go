// Package docstore defines the optional document store the service persists
// analysis records to.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named database or document does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRef identifies a stored document.
type DocumentRef struct {
	ID  string `json:"id"`
	Rev string `json:"rev,omitempty"`
}

// Store persists JSON documents into one named database.
type Store interface {
	// Name returns the database name.
	Name() string
	// CreateDocument inserts doc, which must marshal to a JSON object.
	CreateDocument(ctx context.Context, doc any) (DocumentRef, error)
	// ListDocumentIDs returns every document id in the backend's read order.
	ListDocumentIDs(ctx context.Context) ([]string, error)
}

// StatusReport summarizes a database.
type StatusReport struct {
	DatabaseName    string   `json:"database_name"`
	DocumentCount   int      `json:"document_count"`
	RecentDocuments []string `json:"recent_documents"`
}

// Status reads the full listing and reports the count and the last n ids.
func Status(ctx context.Context, store Store, n int) (StatusReport, error) {
	ids, err := store.ListDocumentIDs(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	start := len(ids) - n
	if start < 0 || n < 0 {
		start = 0
	}
	recent := make([]string, len(ids[start:]))
	copy(recent, ids[start:])
	return StatusReport{
		DatabaseName:    store.Name(),
		DocumentCount:   len(ids),
		RecentDocuments: recent,
	}, nil
}
