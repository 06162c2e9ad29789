// Package cloudant implements docstore.Store on the Cloudant (CouchDB) HTTP API.
package cloudant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"news-classifier/internal/docstore"
	"news-classifier/internal/shared/ibmiam"
)

const maxBodyBytes = 32 << 20

// Options configures Open.
type Options struct {
	Username    string
	APIKey      string
	URL         string
	Database    string
	IAMTokenURL string
	Timeout     time.Duration
	// HTTPClient overrides the IAM-authenticated client, mainly for tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Store is a handle to one Cloudant database.
type Store struct {
	baseURL    string
	database   string
	httpClient *http.Client
	logger     *zap.Logger
}

// HTTPError is a non-2xx answer from Cloudant.
type HTTPError struct {
	StatusCode int
	ErrorCode  string
	Reason     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("cloudant %d %s: %s", e.StatusCode, e.ErrorCode, e.Reason)
}

type sessionResponse struct {
	OK      bool `json:"ok"`
	UserCtx struct {
		Name  string   `json:"name"`
		Roles []string `json:"roles"`
	} `json:"userCtx"`
}

// Open establishes a session and connects to the database, creating it if it
// does not exist.
func Open(ctx context.Context, opts Options) (*Store, error) {
	base, err := url.Parse(strings.TrimSpace(opts.URL))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid cloudant url %q", opts.URL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := opts.HTTPClient
	if client == nil {
		client = ibmiam.NewClient(context.Background(), opts.APIKey, opts.IAMTokenURL, timeout)
	}

	s := &Store{
		baseURL:    strings.TrimRight(base.String(), "/"),
		database:   opts.Database,
		httpClient: client,
		logger:     logger,
	}

	var session sessionResponse
	if err := s.do(ctx, http.MethodGet, "/_session", nil, &session); err != nil {
		return nil, fmt.Errorf("cloudant session: %w", err)
	}
	logger.Info("Cloudant session established", zap.String("user", session.UserCtx.Name), zap.Strings("roles", session.UserCtx.Roles))
	if opts.Username != "" && session.UserCtx.Name != "" && !strings.EqualFold(session.UserCtx.Name, opts.Username) {
		logger.Warn("Cloudant session user differs from CLOUDANT_USERNAME",
			zap.String("configured", opts.Username),
			zap.String("session", session.UserCtx.Name))
	}

	var dbs []string
	if err := s.do(ctx, http.MethodGet, "/_all_dbs", nil, &dbs); err != nil {
		return nil, fmt.Errorf("cloudant list databases: %w", err)
	}
	for _, name := range dbs {
		if name == opts.Database {
			logger.Info("Connected to existing database", zap.String("database", opts.Database))
			return s, nil
		}
	}

	if err := s.do(ctx, http.MethodPut, "/"+url.PathEscape(opts.Database), nil, nil); err != nil {
		return nil, fmt.Errorf("cloudant create database %s: %w", opts.Database, err)
	}
	logger.Info("Created new database", zap.String("database", opts.Database))
	return s, nil
}

// Name returns the database name.
func (s *Store) Name() string { return s.database }

// CreateDocument posts doc to the database and returns the server-assigned id.
func (s *Store) CreateDocument(ctx context.Context, doc any) (docstore.DocumentRef, error) {
	var out struct {
		OK  bool   `json:"ok"`
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}
	if err := s.do(ctx, http.MethodPost, "/"+url.PathEscape(s.database), doc, &out); err != nil {
		return docstore.DocumentRef{}, fmt.Errorf("cloudant create document: %w", err)
	}
	if !out.OK || out.ID == "" {
		return docstore.DocumentRef{}, fmt.Errorf("cloudant create document: server did not confirm the write")
	}
	return docstore.DocumentRef{ID: out.ID, Rev: out.Rev}, nil
}

// ListDocumentIDs reads _all_docs and returns ids in key order.
func (s *Store) ListDocumentIDs(ctx context.Context) ([]string, error) {
	var out struct {
		TotalRows int `json:"total_rows"`
		Rows      []struct {
			ID string `json:"id"`
		} `json:"rows"`
	}
	if err := s.do(ctx, http.MethodGet, "/"+url.PathEscape(s.database)+"/_all_docs", nil, &out); err != nil {
		return nil, fmt.Errorf("cloudant all docs: %w", err)
	}
	ids := make([]string, 0, len(out.Rows))
	for _, row := range out.Rows {
		if row.ID != "" {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

func (s *Store) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode)}
		var parsed struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		if json.Unmarshal(raw, &parsed) == nil {
			if parsed.Error != "" {
				httpErr.ErrorCode = parsed.Error
			}
			if parsed.Reason != "" {
				httpErr.Reason = parsed.Reason
			}
		}
		return httpErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

var _ docstore.Store = (*Store)(nil)
