// Package testutil provides shared test helpers: contexts with timeouts and
// disposable database pools backed by temporary SQLite files.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// TestContext returns a context with a 30s timeout, cancelled on cleanup.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// SQLitePoolConfig returns a pool config over a fresh temp-file SQLite
// database. The busy-timeout pragma keeps concurrent writers from failing
// fast with SQLITE_BUSY.
func SQLitePoolConfig(t *testing.T, maxConns int) database.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return database.Config{
		DriverName:     "sqlite",
		DSN:            "file:" + path + "?mode=rwc&_pragma=busy_timeout(10000)",
		MinConns:       1,
		MaxConns:       maxConns,
		AcquireTimeout: 10 * time.Second,
	}
}

// StartSQLitePool starts a pool over a fresh SQLite database and stops it on
// cleanup.
func StartSQLitePool(t *testing.T, maxConns int) *database.Pool {
	t.Helper()
	pool := database.NewPool(SQLitePoolConfig(t, maxConns), zap.NewNop())
	ctx := TestContext(t)
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("failed to start test pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Stop(context.Background())
	})
	return pool
}

// NewSQLiteExecutor returns an executor over a fresh started SQLite pool.
func NewSQLiteExecutor(t *testing.T, maxConns int) *database.Executor {
	t.Helper()
	return database.NewExecutor(StartSQLitePool(t, maxConns), zap.NewNop())
}
