package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/database"
)

// Operator-facing state misuse errors.
var (
	// ErrAlreadyApplied is returned when applying a unit that is recorded as
	// applied.
	ErrAlreadyApplied = errors.New("migration already applied")

	// ErrNotApplied is returned when reverting a unit that has no record.
	ErrNotApplied = errors.New("migration not applied")
)

// UnitError reports which unit a batch operation failed on and why.
type UnitError struct {
	Key string
	Err error
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("migration %s: %v", e.Key, e.Err)
}

func (e *UnitError) Unwrap() error { return e.Err }

// Status describes one registered unit's current state.
type Status struct {
	Version   uint
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// Key returns the unit's tracking key.
func (s Status) Key() string {
	return Unit{Version: s.Version, Name: s.Name}.Key()
}

var tableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultTable is the tracking table owned by the engine.
const DefaultTable = "schema_migrations"

// Option configures a Migrator.
type Option func(*Migrator)

// WithTable overrides the tracking table name.
func WithTable(name string) Option {
	return func(m *Migrator) { m.table = name }
}

// Migrator applies and reverts registered migration units against a live
// database, tracking applied state in a dedicated table. Each unit's schema
// statements and its tracking record commit in one transaction: either both
// are durable or neither is.
//
// The engine assumes exclusive, operator-driven execution; it takes no
// cross-process lock.
type Migrator struct {
	pool     *database.Pool
	registry *Registry
	table    string
	logger   *zap.Logger
}

// New creates a migrator over the given pool and manifest.
func New(pool *database.Pool, registry *Registry, logger *zap.Logger, opts ...Option) (*Migrator, error) {
	m := &Migrator{
		pool:     pool,
		registry: registry,
		table:    DefaultTable,
		logger:   logger.With(zap.String("component", "migrator")),
	}
	for _, opt := range opts {
		opt(m)
	}
	if !tableNameRe.MatchString(m.table) {
		return nil, fmt.Errorf("invalid tracking table name %q", m.table)
	}
	return m, nil
}

// Units returns the manifest in ascending version order.
func (m *Migrator) Units() []Unit {
	return m.registry.Units()
}

// Unit looks a unit up by tracking key.
func (m *Migrator) Unit(key string) (Unit, bool) {
	return m.registry.ByKey(key)
}

// ApplyOne runs a unit's forward statements and writes its tracking record in
// one transaction. Returns ErrAlreadyApplied (wrapped with the unit key) if a
// record already exists.
func (m *Migrator) ApplyOne(ctx context.Context, u Unit) error {
	h, err := m.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()

	if err := m.ensureTable(ctx, h.Conn()); err != nil {
		return err
	}

	applied, err := m.isApplied(ctx, h.Conn(), u.Key())
	if err != nil {
		return err
	}
	if applied {
		return &UnitError{Key: u.Key(), Err: ErrAlreadyApplied}
	}

	tx, err := h.Conn().BeginTx(ctx, nil)
	if err != nil {
		return &UnitError{Key: u.Key(), Err: err}
	}

	for _, stmt := range u.Up {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return &UnitError{Key: u.Key(), Err: err}
		}
	}

	insert := fmt.Sprintf("INSERT INTO %s (migration_name, applied_at) VALUES ($1, $2)", m.table)
	if _, err := tx.ExecContext(ctx, insert, u.Key(), time.Now().UTC()); err != nil {
		tx.Rollback()
		return &UnitError{Key: u.Key(), Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &UnitError{Key: u.Key(), Err: err}
	}

	m.logger.Info("migration applied", zap.String("unit", u.Key()))
	return nil
}

// RevertOne runs a unit's reverse statements and deletes its tracking record
// in one transaction. Returns ErrNotApplied (wrapped with the unit key) if no
// record exists.
func (m *Migrator) RevertOne(ctx context.Context, u Unit) error {
	h, err := m.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()

	if err := m.ensureTable(ctx, h.Conn()); err != nil {
		return err
	}

	applied, err := m.isApplied(ctx, h.Conn(), u.Key())
	if err != nil {
		return err
	}
	if !applied {
		return &UnitError{Key: u.Key(), Err: ErrNotApplied}
	}

	tx, err := h.Conn().BeginTx(ctx, nil)
	if err != nil {
		return &UnitError{Key: u.Key(), Err: err}
	}

	for _, stmt := range u.Down {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return &UnitError{Key: u.Key(), Err: err}
		}
	}

	del := fmt.Sprintf("DELETE FROM %s WHERE migration_name = $1", m.table)
	if _, err := tx.ExecContext(ctx, del, u.Key()); err != nil {
		tx.Rollback()
		return &UnitError{Key: u.Key(), Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &UnitError{Key: u.Key(), Err: err}
	}

	m.logger.Info("migration reverted", zap.String("unit", u.Key()))
	return nil
}

// ApplyAll applies every unapplied unit in ascending version order, stopping
// at the first failure. A fully-applied manifest is a no-op. Returns the
// number of units applied by this call.
func (m *Migrator) ApplyAll(ctx context.Context) (int, error) {
	statuses, err := m.StatusAll(ctx)
	if err != nil {
		return 0, err
	}

	appliedSet := make(map[uint]bool, len(statuses))
	for _, s := range statuses {
		appliedSet[s.Version] = s.Applied
	}

	n := 0
	for _, u := range m.registry.Units() {
		if appliedSet[u.Version] {
			continue
		}
		if err := m.ApplyOne(ctx, u); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RevertAll reverts every applied unit in descending version order, stopping
// at the first failure. A fully-reverted manifest is a no-op. Returns the
// number of units reverted by this call.
func (m *Migrator) RevertAll(ctx context.Context) (int, error) {
	statuses, err := m.StatusAll(ctx)
	if err != nil {
		return 0, err
	}

	appliedSet := make(map[uint]bool, len(statuses))
	for _, s := range statuses {
		appliedSet[s.Version] = s.Applied
	}

	units := m.registry.Units()
	n := 0
	for i := len(units) - 1; i >= 0; i-- {
		u := units[i]
		if !appliedSet[u.Version] {
			continue
		}
		if err := m.RevertOne(ctx, u); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// StatusAll returns the current state of every registered unit in ascending
// version order.
func (m *Migrator) StatusAll(ctx context.Context) ([]Status, error) {
	h, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	if err := m.ensureTable(ctx, h.Conn()); err != nil {
		return nil, err
	}

	records, err := m.records(ctx, h.Conn())
	if err != nil {
		return nil, err
	}

	units := m.registry.Units()
	statuses := make([]Status, 0, len(units))
	for _, u := range units {
		s := Status{Version: u.Version, Name: u.Name}
		if at, ok := records[u.Key()]; ok {
			s.Applied = true
			s.AppliedAt = at
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func (m *Migrator) ensureTable(ctx context.Context, conn *sql.Conn) error {
	ddl := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (migration_name VARCHAR(255) PRIMARY KEY, applied_at TIMESTAMP NOT NULL)",
		m.table,
	)
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to ensure tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) isApplied(ctx context.Context, conn *sql.Conn, key string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE migration_name = $1", m.table)
	var one int
	err := conn.QueryRowContext(ctx, query, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read tracking table: %w", err)
	}
	return true, nil
}

func (m *Migrator) records(ctx context.Context, conn *sql.Conn) (map[string]time.Time, error) {
	query := fmt.Sprintf("SELECT migration_name, applied_at FROM %s", m.table)
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracking table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var raw any
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan tracking record: %w", err)
		}
		at, err := coerceTime(raw)
		if err != nil {
			return nil, fmt.Errorf("tracking record %s: %w", name, err)
		}
		out[name] = at
	}
	return out, rows.Err()
}

// coerceTime normalizes applied_at values across drivers: pgx yields
// time.Time, sqlite yields text.
func coerceTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	default:
		return time.Time{}, fmt.Errorf("unexpected applied_at type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
