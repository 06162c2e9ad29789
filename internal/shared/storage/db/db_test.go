package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                    { return nil }
func (nopStmt) NumInput() int                                   { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	t.Cleanup(func() {
		openDB = prev
	})
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	withTestDriver(t)

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions(), nil)
	db, err := Connect(context.Background(), "ignored", opts, nil)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
	assert.Equal(t, 3, opts.MaxIdleConns)
	assert.Equal(t, 20*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 45*time.Second, opts.ConnMaxIdleTime)
	assert.Equal(t, time.Second, opts.PingTimeout)
}

func TestOptionsFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	opts := OptionsFromEnv(DefaultMigrateOptions(), nil)
	assert.Equal(t, 1, opts.MaxOpenConns)
	assert.Equal(t, 5*time.Second, opts.PingTimeout)
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "  ", DefaultServerOptions(), nil)
	require.Error(t, err)
}

func TestConnectOpenFailure(t *testing.T) {
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return nil, errors.New("no driver")
	}
	t.Cleanup(func() { openDB = prev })

	_, err := Connect(context.Background(), "postgres://x", DefaultServerOptions(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open database")
}
