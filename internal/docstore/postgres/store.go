// Package postgres implements docstore.Store with JSONB rows in Postgres.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"news-classifier/internal/docstore"
)

// Store keeps the documents of one named database in the documents table.
type Store struct {
	DB       *sql.DB
	database string
}

// Open connects to the named database, creating its row if it does not exist.
// Migrations must already be applied.
func Open(ctx context.Context, db *sql.DB, name string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM doc_databases WHERE name = $1)`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup database %s: %w", name, err)
	}
	if exists {
		logger.Info("Connected to existing database", zap.String("database", name))
		return &Store{DB: db, database: name}, nil
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO doc_databases (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
		return nil, fmt.Errorf("create database %s: %w", name, err)
	}
	logger.Info("Created new database", zap.String("database", name))
	return &Store{DB: db, database: name}, nil
}

// Name returns the database name.
func (s *Store) Name() string { return s.database }

// CreateDocument inserts doc as a JSONB body.
func (s *Store) CreateDocument(ctx context.Context, doc any) (docstore.DocumentRef, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return docstore.DocumentRef{}, fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	const query = `INSERT INTO documents (id, database_name, body) VALUES ($1, $2, $3)`
	if _, err := s.DB.ExecContext(ctx, query, id, s.database, string(body)); err != nil {
		return docstore.DocumentRef{}, fmt.Errorf("insert document: %w", err)
	}
	return docstore.DocumentRef{ID: id}, nil
}

// ListDocumentIDs returns ids in insertion order.
func (s *Store) ListDocumentIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM documents WHERE database_name = $1 ORDER BY seq`
	rows, err := s.DB.QueryContext(ctx, query, s.database)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

var _ docstore.Store = (*Store)(nil)
