package seed

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/internal/repository"
	"github.com/taskdeck/taskdeck/testutil"
)

// newSeedFixture builds a loader over a single-connection pool; SQLite
// serializes writers, so concurrent seed inserts queue on the pool instead of
// racing the database.
func newSeedFixture(t *testing.T) (*Loader, *database.Executor, context.Context) {
	t.Helper()
	ctx := testutil.TestContext(t)

	path := filepath.Join(t.TempDir(), "seed.db")
	cfg := database.Config{
		DriverName:     "sqlite",
		DSN:            "file:" + path + "?mode=rwc&_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)",
		MinConns:       1,
		MaxConns:       1,
		AcquireTimeout: 30 * time.Second,
	}
	pool := database.NewPool(cfg, zap.NewNop())
	require.NoError(t, pool.Start(ctx))
	t.Cleanup(func() { pool.Stop(context.Background()) })

	exec := database.NewExecutor(pool, zap.NewNop())

	_, err := exec.Execute(ctx, `CREATE TABLE todos (
		todo_id INTEGER PRIMARY KEY,
		owner VARCHAR(120) UNIQUE NOT NULL,
		name VARCHAR(60) NOT NULL,
		status VARCHAR(10) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	_, err = exec.Execute(ctx, `CREATE TABLE tasks (
		task_id INTEGER PRIMARY KEY,
		brief VARCHAR(300) NOT NULL,
		todo_id INTEGER NOT NULL REFERENCES todos(todo_id) ON DELETE CASCADE,
		contents TEXT,
		status VARCHAR(10) NOT NULL,
		priority VARCHAR(10) NOT NULL,
		category VARCHAR(100) NOT NULL,
		due TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	return NewLoader(exec, zap.NewNop()), exec, ctx
}

func TestLoader_LoadAll(t *testing.T) {
	loader, exec, ctx := newSeedFixture(t)

	require.NoError(t, loader.LoadAll(ctx, 5, 7))

	todos := repository.NewTodoRepository(exec, zap.NewNop())
	listed, err := todos.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, listed, 5)

	tasks := repository.NewTaskRepository(exec, zap.NewNop())
	taskList, err := tasks.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, taskList, 7)

	// Every task hangs off the lowest numbered todo.
	firstID := listed[0].ID
	for _, task := range taskList {
		assert.Equal(t, firstID, task.TodoID)
	}
}

func TestLoader_LoadAll_NoTasks(t *testing.T) {
	loader, exec, ctx := newSeedFixture(t)

	require.NoError(t, loader.LoadAll(ctx, 3, 0))

	tasks := repository.NewTaskRepository(exec, zap.NewNop())
	taskList, err := tasks.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, taskList)
}

func TestLoader_LoadTodos_StopsOnConflict(t *testing.T) {
	loader, _, ctx := newSeedFixture(t)

	require.NoError(t, loader.LoadTodos(ctx, 3))

	// Re-seeding collides with the unique owner constraint.
	err := loader.LoadTodos(ctx, 3)
	require.Error(t, err)

	var qe *database.QueryError
	assert.ErrorAs(t, err, &qe)
}

func TestLoader_Cleanup(t *testing.T) {
	loader, exec, ctx := newSeedFixture(t)

	require.NoError(t, loader.LoadAll(ctx, 3, 4))
	require.NoError(t, loader.Cleanup(ctx))

	todos := repository.NewTodoRepository(exec, zap.NewNop())
	listed, err := todos.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// Cleanup on an empty database is fine.
	require.NoError(t, loader.Cleanup(ctx))
}
