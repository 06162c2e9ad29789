package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"news-classifier/internal/docstore"
)

// Store keeps documents in memory and is safe for concurrent use.
type Store struct {
	name string

	mu   sync.RWMutex
	ids  []string
	docs map[string]json.RawMessage
}

// New constructs an empty Store for the named database.
func New(name string) *Store {
	return &Store{
		name: name,
		docs: make(map[string]json.RawMessage),
	}
}

// Name returns the database name.
func (s *Store) Name() string { return s.name }

// CreateDocument stores a JSON copy of doc under a new id.
func (s *Store) CreateDocument(ctx context.Context, doc any) (docstore.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return docstore.DocumentRef{}, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return docstore.DocumentRef{}, fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, id)
	s.docs[id] = raw
	return docstore.DocumentRef{ID: id}, nil
}

// ListDocumentIDs returns ids in insertion order.
func (s *Store) ListDocumentIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// Get returns the stored JSON for id.
func (s *Store) Get(ctx context.Context, id string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return raw, nil
}

var _ docstore.Store = (*Store)(nil)
