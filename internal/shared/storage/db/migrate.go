package db

import (
	"context"
	"database/sql"
	"embed"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// RunMigrations applies embedded SQL migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, logger *zap.Logger) error {
	if database == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, "migrations")
}

type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }
func (l gooseLogger) Printf(format string, v ...interface{}) { l.s.Infof(format, v...) }
