// Package news orchestrates text classification: input validation, the call
// to the analysis service and best-effort persistence of the result.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"news-classifier/internal/docstore"
	"news-classifier/internal/nlu"
	"news-classifier/internal/shared/apperr"
	"news-classifier/internal/shared/metrics"
	"news-classifier/internal/shared/telemetry"
)

const (
	msgNLUUnavailable   = "Watson NLU service not available. Check your configuration."
	msgStoreUnavailable = "Cloudant not initialized"

	recentDocuments = 5
	probeMessage    = "This is a test document"
)

// Service holds the two dependency handles. A nil NLU or Store means the
// dependency is absent for the lifetime of the process.
type Service struct {
	NLU          nlu.Client
	Store        docstore.Store
	StoreTimeout time.Duration
	// AsyncWrites detaches persistence from the request. Wait drains it.
	AsyncWrites bool
	Now         func() time.Time

	wg sync.WaitGroup
}

// Analyze validates raw, sends it to the analysis service and returns the
// result untouched. Persistence failures never surface here.
func (s *Service) Analyze(ctx context.Context, raw string) (json.RawMessage, error) {
	log := telemetry.FromContext(ctx)

	if s.NLU == nil {
		metrics.ObserveAnalyze(string(apperr.KindServiceUnavailable))
		return nil, apperr.New(apperr.KindServiceUnavailable, msgNLUUnavailable)
	}

	text, truncated, err := prepareText(raw)
	if err != nil {
		metrics.ObserveAnalyze(string(apperr.KindOf(err)))
		return nil, err
	}
	if truncated {
		log.Warn("Text truncated to 50,000 characters", zap.Int("original_length", runeLen(raw)))
	}

	log.Info("Analyzing text", zap.Int("length", runeLen(text)))
	start := time.Now()
	result, err := s.NLU.Analyze(ctx, text)
	metrics.ObserveAnalysisDuration(time.Since(start))
	if err != nil {
		classified := ClassifyAnalysisError(err)
		log.Error("Watson NLU analysis failed",
			zap.String("category", string(classified.Kind)),
			zap.Error(err),
		)
		metrics.ObserveAnalyze(string(classified.Kind))
		return nil, classified
	}

	s.persist(ctx, text, result)
	metrics.ObserveAnalyze("success")
	return result, nil
}

func (s *Service) persist(ctx context.Context, text string, result json.RawMessage) {
	if s.Store == nil {
		telemetry.FromContext(ctx).Info("Cloudant not available - skipping database storage")
		metrics.ObserveStoreWrite("skipped")
		return
	}

	record := NewRecord(s.now(), text, result)
	if !s.AsyncWrites {
		s.write(ctx, record)
		return
	}

	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.write(detached, record)
	}()
}

func (s *Service) write(ctx context.Context, record Record) {
	log := telemetry.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Failed to save to Cloudant", zap.String("category", "panic"), zap.Any("panic", r))
			metrics.ObserveStoreWrite("failed")
		}
	}()

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	ref, err := s.Store.CreateDocument(ctx, record)
	if err != nil {
		log.Error("Failed to save to Cloudant",
			zap.String("category", telemetry.ErrorCategory(err)),
			zap.Error(err),
		)
		metrics.ObserveStoreWrite("failed")
		return
	}
	log.Info("Saved analysis to Cloudant", zap.String("document_id", ref.ID))
	metrics.ObserveStoreWrite("ok")
}

// ProbeStore writes one marker document and counts the database contents.
func (s *Service) ProbeStore(ctx context.Context) (ProbeResult, error) {
	if s.Store == nil {
		return ProbeResult{}, apperr.New(apperr.KindServiceUnavailable, msgStoreUnavailable)
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	ref, err := s.Store.CreateDocument(ctx, probeDocument{
		Test:      true,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		Message:   probeMessage,
	})
	if err != nil {
		return ProbeResult{}, storeFailure(ctx, "Cloudant test failed", err)
	}
	ids, err := s.Store.ListDocumentIDs(ctx)
	if err != nil {
		return ProbeResult{}, storeFailure(ctx, "Cloudant test failed", err)
	}

	return ProbeResult{
		Success:        true,
		DocumentID:     ref.ID,
		TotalDocuments: len(ids),
		Message:        "Test document created successfully",
	}, nil
}

// StoreStatus reports the database name, its document count and the last
// five document ids.
func (s *Service) StoreStatus(ctx context.Context) (docstore.StatusReport, error) {
	if s.Store == nil {
		return docstore.StatusReport{}, apperr.New(apperr.KindServiceUnavailable, msgStoreUnavailable)
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	report, err := docstore.Status(ctx, s.Store, recentDocuments)
	if err != nil {
		return docstore.StatusReport{}, storeFailure(ctx, "Database status check failed", err)
	}
	return report, nil
}

// Wait blocks until background writes finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background writes: %w", ctx.Err())
	}
}

func (s *Service) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.StoreTimeout)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func storeFailure(ctx context.Context, prefix string, err error) error {
	telemetry.FromContext(ctx).Error(prefix,
		zap.String("category", telemetry.ErrorCategory(err)),
		zap.Error(err),
	)
	return apperr.Wrap(apperr.KindStore, prefix+": "+err.Error(), err)
}
