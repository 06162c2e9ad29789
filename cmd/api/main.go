package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"news-classifier/internal/bootstrap"
	"news-classifier/internal/shared/apperr"
	"news-classifier/internal/shared/config"
	"news-classifier/internal/shared/server"
	"news-classifier/internal/shared/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	logger, err := telemetry.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start news classifier",
			zap.String("category", string(apperr.KindOf(err))),
			zap.Error(err),
		)
		return 1
	}
	defer func() { _ = app.Close() }()

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting news classifier",
		zap.String("addr", addr),
		zap.String("env", cfg.Env),
		zap.String("nlu", "Connected"),
		zap.String("cloudant", app.StoreStatus()),
		zap.String("store_backend", cfg.StoreBackend),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := app.NewsService.Wait(shutdownCtx); err != nil {
		logger.Warn("background writes did not finish", zap.Error(err))
	}
	return 0
}
