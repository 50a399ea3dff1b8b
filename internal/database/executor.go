package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Executor issues parameterized SQL through pooled connections and maps raw
// results to Row values. Every method acquires a connection for the duration
// of the call and releases it on every exit path, including errors and
// cancellation. Parameters are always bound positionally ($1, $2, ...);
// nothing in this layer ever interpolates values into SQL text.
type Executor struct {
	pool   *Pool
	logger *zap.Logger
}

// NewExecutor creates an executor over the given pool.
func NewExecutor(pool *Pool, logger *zap.Logger) *Executor {
	return &Executor{
		pool:   pool,
		logger: logger.With(zap.String("component", "db_executor")),
	}
}

// Pool returns the pool this executor borrows connections from.
func (e *Executor) Pool() *Pool { return e.pool }

// Execute runs a mutating statement and returns the number of rows affected.
// Failures are reported as *QueryError with the driver error preserved.
func (e *Executor) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	h, err := e.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer h.Release()

	return execStatement(ctx, h.Conn(), e.logger, query, args)
}

// FetchOne runs a statement expected to return at most one row. Zero matching
// rows yield (nil, nil): absence is a normal result, not an error.
func (e *Executor) FetchOne(ctx context.Context, query string, args ...any) (*Row, error) {
	h, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	return fetchOne(ctx, h.Conn(), e.logger, query, args)
}

// FetchMany runs a statement and returns all matching rows in the database's
// natural result order. No match yields an empty slice.
func (e *Executor) FetchMany(ctx context.Context, query string, args ...any) ([]Row, error) {
	h, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	return fetchMany(ctx, h.Conn(), e.logger, query, args)
}

// Conn runs statements on a single acquired connection, giving sequential
// calls a read-your-writes view. Obtained via WithConn.
type Conn struct {
	conn   *sql.Conn
	logger *zap.Logger
}

// Execute runs a mutating statement on this connection.
func (c *Conn) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	return execStatement(ctx, c.conn, c.logger, query, args)
}

// FetchOne runs a single-row query on this connection.
func (c *Conn) FetchOne(ctx context.Context, query string, args ...any) (*Row, error) {
	return fetchOne(ctx, c.conn, c.logger, query, args)
}

// FetchMany runs a multi-row query on this connection.
func (c *Conn) FetchMany(ctx context.Context, query string, args ...any) ([]Row, error) {
	return fetchMany(ctx, c.conn, c.logger, query, args)
}

// WithConn acquires one connection, runs fn against it, and releases it when
// fn returns, whatever the outcome.
func (e *Executor) WithConn(ctx context.Context, fn func(context.Context, *Conn) error) error {
	h, err := e.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()

	return fn(ctx, &Conn{conn: h.conn, logger: e.logger})
}

// querier is satisfied by *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func execStatement(ctx context.Context, q querier, logger *zap.Logger, query string, args []any) (int64, error) {
	start := time.Now()

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, newQueryError(query, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, newQueryError(query, err)
	}

	logger.Debug("statement executed",
		zap.String("op", statementOp(query)),
		zap.Int64("rows_affected", affected),
		zap.Duration("elapsed", time.Since(start)),
	)
	return affected, nil
}

func fetchOne(ctx context.Context, q querier, logger *zap.Logger, query string, args []any) (*Row, error) {
	rows, err := fetchMany(ctx, q, logger, query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func fetchMany(ctx context.Context, q querier, logger *zap.Logger, query string, args []any) ([]Row, error) {
	start := time.Now()

	rs, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newQueryError(query, err)
	}
	defer rs.Close()

	columns, err := rs.Columns()
	if err != nil {
		return nil, newQueryError(query, err)
	}

	out := make([]Row, 0, 8)
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, newQueryError(query, err)
		}
		out = append(out, newRow(columns, values))
	}
	if err := rs.Err(); err != nil {
		return nil, newQueryError(query, err)
	}

	logger.Debug("query executed",
		zap.String("op", statementOp(query)),
		zap.Int("rows", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// statementOp extracts the leading SQL verb for log and error context.
func statementOp(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "STATEMENT"
	}
	return strings.ToUpper(fields[0])
}

// IsNotFound reports whether a FetchOne result means "no matching row".
// Kept alongside the executor so callers do not compare against nil pointers
// scattered through the codebase.
func IsNotFound(row *Row, err error) bool {
	return err == nil && row == nil
}
