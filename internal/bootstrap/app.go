package bootstrap

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"news-classifier/internal/docstore"
	"news-classifier/internal/docstore/cloudant"
	"news-classifier/internal/docstore/memory"
	"news-classifier/internal/docstore/postgres"
	s3store "news-classifier/internal/docstore/s3"
	"news-classifier/internal/news"
	"news-classifier/internal/nlu"
	"news-classifier/internal/nlu/watson"
	"news-classifier/internal/services/health"
	"news-classifier/internal/shared/config"
	"news-classifier/internal/shared/server"
	"news-classifier/internal/shared/storage/db"
	"news-classifier/internal/shared/telemetry"
)

// App holds the process-wide dependencies. NLU and Store are set once by
// Build; a nil Store means persistence is disabled.
type App struct {
	Config        config.Config
	Logger        *zap.Logger
	NLU           nlu.Client
	Store         docstore.Store
	DB            *sql.DB
	NewsService   *news.Service
	NewsHandler   *news.Handler
	HealthHandler *health.Handler
	Router        *gin.Engine
}

// Build validates the analysis configuration and constructs every
// dependency. Missing or broken analysis settings are fatal; the document
// store is best effort.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.ValidateNLU(); err != nil {
		return nil, err
	}

	nluClient, err := watson.NewClient(watson.Options{
		APIKey:      cfg.NLUAPIKey,
		URL:         cfg.NLUURL,
		Version:     cfg.NLUVersion,
		IAMTokenURL: cfg.IAMTokenURL,
		Timeout:     cfg.NLUTimeout,
		Logger:      logger.Named("nlu"),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Watson NLU client initialized", zap.String("url", cfg.NLUURL))

	app := &App{
		Config: cfg,
		Logger: logger,
		NLU:    nluClient,
	}
	app.Store, app.DB = OpenStore(ctx, cfg, logger)
	app.wire()
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func (a *App) wire() {
	a.NewsService = &news.Service{
		NLU:          a.NLU,
		Store:        a.Store,
		StoreTimeout: a.Config.StoreTimeout,
		AsyncWrites:  a.Config.StoreAsyncWrites,
	}
	a.NewsHandler = news.NewHandler(a.NewsService)
	a.HealthHandler = health.NewHandler(health.NewService(a.NLU, a.Store))
	a.Router = server.NewRouter(server.RouterDeps{
		Logger:        a.Logger,
		NewsHandler:   a.NewsHandler,
		HealthHandler: a.HealthHandler,
	})
}

// OpenStore constructs the configured document store. It never fails: on
// missing parameters or any error it logs and returns a nil store. The
// returned *sql.DB is non-nil only for the postgres backend.
func OpenStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (docstore.Store, *sql.DB) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if missing := cfg.StoreMissing(); len(missing) > 0 {
		logger.Warn("Missing "+cfg.StoreBackend+" credentials - database storage disabled",
			zap.Strings("missing", missing))
		return nil, nil
	}

	if cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
	}

	storeLogger := logger.Named("store").With(zap.String("backend", cfg.StoreBackend))
	store, sqlDB, err := openBackend(ctx, cfg, storeLogger)
	if err != nil {
		logger.Error("Failed to initialize document store - database storage disabled",
			zap.String("backend", cfg.StoreBackend),
			zap.String("category", telemetry.ErrorCategory(err)),
			zap.Error(err),
		)
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, nil
	}
	logger.Info("Document store initialized",
		zap.String("backend", cfg.StoreBackend),
		zap.String("database", store.Name()),
	)
	return store, sqlDB
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (docstore.Store, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions(), logger), logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(ctx, sqlDB, logger); err != nil {
			return nil, sqlDB, err
		}
		store, err := postgres.Open(ctx, sqlDB, cfg.StoreDB, logger)
		if err != nil {
			return nil, sqlDB, err
		}
		return store, sqlDB, nil
	case config.StoreS3:
		store, err := s3store.Open(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Database: cfg.StoreDB,
			KMSKeyID: cfg.S3KMSKeyID,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StoreMemory:
		if !cfg.IsDevLike() {
			logger.Warn("Memory document store in a non-development environment; documents are lost on restart")
		}
		return memory.New(strings.TrimSpace(cfg.StoreDB)), nil, nil
	default:
		store, err := cloudant.Open(ctx, cloudant.Options{
			Username:    cfg.CloudantUsername,
			APIKey:      cfg.CloudantAPIKey,
			URL:         cfg.CloudantURL,
			Database:    cfg.StoreDB,
			IAMTokenURL: cfg.IAMTokenURL,
			Timeout:     cfg.StoreTimeout,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

// StoreStatus is the one-word store state for the startup banner.
func (a *App) StoreStatus() string {
	if a.Store == nil {
		return "Not available"
	}
	return "Connected"
}
