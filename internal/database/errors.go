package database

import (
	"errors"
	"fmt"
)

// Lifecycle errors. The pool is started once at process startup and stopped
// once at shutdown; any other ordering is a programming error surfaced to the
// caller rather than papered over.
var (
	// ErrAlreadyStarted is returned by Start when the pool is already running.
	ErrAlreadyStarted = errors.New("database: pool already started")

	// ErrNotStarted is returned when the pool is used before Start.
	ErrNotStarted = errors.New("database: pool not started")

	// ErrClosed is returned when the pool is used after Stop.
	ErrClosed = errors.New("database: pool closed")

	// ErrAcquireTimeout is returned when no connection became free within the
	// configured acquire timeout. Transient; the caller may retry.
	ErrAcquireTimeout = errors.New("database: connection acquire timed out")
)

// ConnectionError reports that the database could not be reached or refused
// authentication during Start. Fatal at startup; retries belong to the process
// supervisor, not this layer.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database: connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a statement-level failure. Op carries the statement
// intent (the leading SQL verb), never the full SQL text, so it is safe to log.
// The underlying driver error is preserved via Unwrap.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database: %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// newQueryError wraps err with the statement intent derived from query.
func newQueryError(query string, err error) *QueryError {
	return &QueryError{Op: statementOp(query), Err: err}
}
