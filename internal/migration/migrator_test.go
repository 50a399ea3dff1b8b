package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"
	"github.com/taskdeck/taskdeck/testutil"
)

// testRegistry returns a two-unit manifest whose statements run on SQLite.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(Unit{
		Version: 1,
		Name:    "create_widgets",
		Up: []string{
			`CREATE TABLE widgets (
				widget_id INTEGER PRIMARY KEY,
				label VARCHAR(120) UNIQUE NOT NULL
			)`,
		},
		Down: []string{`DROP TABLE widgets`},
	})
	r.MustRegister(Unit{
		Version: 2,
		Name:    "widgets_add_color",
		Up: []string{
			`ALTER TABLE widgets ADD COLUMN color VARCHAR(30) NOT NULL DEFAULT 'gray'`,
		},
		Down: []string{`ALTER TABLE widgets DROP COLUMN color`},
	})
	return r
}

func newTestMigrator(t *testing.T, registry *Registry) (*Migrator, *database.Executor) {
	t.Helper()
	pool := testutil.StartSQLitePool(t, 2)
	m, err := New(pool, registry, zap.NewNop())
	require.NoError(t, err)
	return m, database.NewExecutor(pool, zap.NewNop())
}

func appliedKeys(t *testing.T, m *Migrator, ctx context.Context) []string {
	t.Helper()
	statuses, err := m.StatusAll(ctx)
	require.NoError(t, err)
	var keys []string
	for _, s := range statuses {
		if s.Applied {
			keys = append(keys, s.Key())
		}
	}
	return keys
}

func TestNew_InvalidTableName(t *testing.T) {
	pool := testutil.StartSQLitePool(t, 1)

	_, err := New(pool, NewRegistry(), zap.NewNop(), WithTable("bad;name"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tracking table name")
}

func TestMigrator_ApplyRevertRoundTrip(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, exec := newTestMigrator(t, testRegistry(t))

	unit, ok := m.Unit("0001_create_widgets")
	require.True(t, ok)

	require.NoError(t, m.ApplyOne(ctx, unit))

	// Forward change is visible.
	_, err := exec.Execute(ctx, "INSERT INTO widgets (label) VALUES ($1)", "alpha")
	require.NoError(t, err)

	// Tracking record exists with a sane timestamp.
	statuses, err := m.StatusAll(ctx)
	require.NoError(t, err)
	require.True(t, statuses[0].Applied)
	assert.WithinDuration(t, time.Now().UTC(), statuses[0].AppliedAt, time.Minute)

	require.NoError(t, m.RevertOne(ctx, unit))

	// Table is gone and the record with it.
	_, err = exec.Execute(ctx, "INSERT INTO widgets (label) VALUES ($1)", "beta")
	require.Error(t, err)
	assert.Empty(t, appliedKeys(t, m, ctx))
}

func TestMigrator_ApplyOne_AlreadyApplied(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))

	unit, _ := m.Unit("0001_create_widgets")
	require.NoError(t, m.ApplyOne(ctx, unit))

	err := m.ApplyOne(ctx, unit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, "0001_create_widgets", unitErr.Key)
}

func TestMigrator_RevertOne_NotApplied(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))

	unit, _ := m.Unit("0001_create_widgets")

	err := m.RevertOne(ctx, unit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotApplied)

	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, "0001_create_widgets", unitErr.Key)
}

func TestMigrator_ApplyAll_Ordering(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, exec := newTestMigrator(t, testRegistry(t))

	n, err := m.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Both units landed; the second unit's column is usable.
	_, err = exec.Execute(ctx,
		"INSERT INTO widgets (label, color) VALUES ($1, $2)", "alpha", "red")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"0001_create_widgets", "0002_widgets_add_color"},
		appliedKeys(t, m, ctx))
}

func TestMigrator_ApplyAll_Idempotent(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))

	n, err := m.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Second run is a no-op, not an error.
	n, err = m.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, appliedKeys(t, m, ctx), 2)
}

func TestMigrator_ApplyAll_ResumesAfterPartial(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))

	unit, _ := m.Unit("0001_create_widgets")
	require.NoError(t, m.ApplyOne(ctx, unit))

	// Only the pending unit runs.
	n, err := m.ApplyAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrator_ApplyAll_StopsAtFirstFailure(t *testing.T) {
	ctx := testutil.TestContext(t)

	r := NewRegistry()
	r.MustRegister(Unit{
		Version: 1,
		Name:    "good",
		Up:      []string{`CREATE TABLE good (id INTEGER PRIMARY KEY)`},
		Down:    []string{`DROP TABLE good`},
	})
	r.MustRegister(Unit{
		Version: 2,
		Name:    "broken",
		Up:      []string{`CREATE TABLE (((`},
		Down:    []string{`DROP TABLE broken`},
	})
	r.MustRegister(Unit{
		Version: 3,
		Name:    "never_reached",
		Up:      []string{`CREATE TABLE unreached (id INTEGER PRIMARY KEY)`},
		Down:    []string{`DROP TABLE unreached`},
	})

	m, exec := newTestMigrator(t, r)

	n, err := m.ApplyAll(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, n)

	var unitErr *UnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, "0002_broken", unitErr.Key)

	// State is accurate: only the first unit is recorded, the failed unit
	// left nothing behind, the third never ran.
	assert.Equal(t, []string{"0001_good"}, appliedKeys(t, m, ctx))
	_, err = exec.Execute(ctx, "INSERT INTO unreached DEFAULT VALUES")
	require.Error(t, err)
}

func TestMigrator_FailedUnitLeavesNoRecord(t *testing.T) {
	ctx := testutil.TestContext(t)

	r := NewRegistry()
	r.MustRegister(Unit{
		Version: 1,
		Name:    "partial",
		Up: []string{
			`CREATE TABLE partial (id INTEGER PRIMARY KEY)`,
			`THIS IS NOT SQL`,
		},
		Down: []string{`DROP TABLE partial`},
	})

	m, _ := newTestMigrator(t, r)

	unit, _ := m.Unit("0001_partial")
	err := m.ApplyOne(ctx, unit)
	require.Error(t, err)

	// The tracking table records nothing for the failed unit.
	assert.Empty(t, appliedKeys(t, m, ctx))
}

func TestMigrator_RevertAll(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, exec := newTestMigrator(t, testRegistry(t))

	_, err := m.ApplyAll(ctx)
	require.NoError(t, err)

	n, err := m.RevertAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, appliedKeys(t, m, ctx))

	_, err = exec.Execute(ctx, "INSERT INTO widgets (label) VALUES ($1)", "gone")
	require.Error(t, err)

	// Fully reverted manifest is a no-op.
	n, err = m.RevertAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMigrator_StatusAll_EmptyDatabase(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))

	statuses, err := m.StatusAll(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Applied)
		assert.True(t, s.AppliedAt.IsZero())
	}
}

func TestMigrator_CustomTable(t *testing.T) {
	ctx := testutil.TestContext(t)
	pool := testutil.StartSQLitePool(t, 2)

	m, err := New(pool, testRegistry(t), zap.NewNop(), WithTable("deploy_history"))
	require.NoError(t, err)

	_, err = m.ApplyAll(ctx)
	require.NoError(t, err)

	exec := database.NewExecutor(pool, zap.NewNop())
	rows, err := exec.FetchMany(ctx, "SELECT migration_name FROM deploy_history")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCoerceTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	got, err := coerceTime(now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = coerceTime("2026-03-14T09:26:53Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	got, err = coerceTime([]byte("2026-03-14 09:26:53"))
	require.NoError(t, err)
	assert.True(t, got.Equal(now))

	_, err = coerceTime(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected applied_at type")

	_, err = coerceTime("not a timestamp")
	require.Error(t, err)
}

func TestCLI_Output(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))
	cli := NewCLI(m)

	var buf bytes.Buffer
	cli.SetOutput(&buf)

	require.NoError(t, cli.RunVersion(ctx))
	assert.Contains(t, buf.String(), "No migrations applied yet")

	buf.Reset()
	require.NoError(t, cli.RunUp(ctx))
	assert.Contains(t, buf.String(), "Applied 2 migration(s).")

	buf.Reset()
	require.NoError(t, cli.RunUp(ctx))
	assert.Contains(t, buf.String(), "Nothing to apply")

	buf.Reset()
	require.NoError(t, cli.RunStatus(ctx))
	assert.Contains(t, buf.String(), "create_widgets")
	assert.Contains(t, buf.String(), "Total: 2, Applied: 2, Pending: 0")

	buf.Reset()
	require.NoError(t, cli.RunVersion(ctx))
	assert.Contains(t, buf.String(), "Current migration: 0002_widgets_add_color")

	buf.Reset()
	require.NoError(t, cli.RunDown(ctx))
	assert.Contains(t, buf.String(), "Reverted 0002_widgets_add_color.")

	buf.Reset()
	require.NoError(t, cli.RunApply(ctx, "0002_widgets_add_color"))
	assert.Contains(t, buf.String(), "Applied 0002_widgets_add_color.")

	buf.Reset()
	require.NoError(t, cli.RunApply(ctx, "0002_widgets_add_color"))
	assert.Contains(t, buf.String(), "already applied")

	buf.Reset()
	err := cli.RunApply(ctx, "0099_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration")

	buf.Reset()
	require.NoError(t, cli.RunDownAll(ctx))
	assert.Contains(t, buf.String(), "Reverted 2 migration(s).")
}

func TestCLI_RunRevert_NotApplied(t *testing.T) {
	ctx := testutil.TestContext(t)
	m, _ := newTestMigrator(t, testRegistry(t))
	cli := NewCLI(m)
	cli.SetOutput(&bytes.Buffer{})

	err := cli.RunRevert(ctx, "0001_create_widgets")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotApplied))
}
