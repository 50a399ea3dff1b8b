/*
Package database provides the pooled data access core: a bounded connection
pool with an explicit start/stop lifecycle, an executor for parameterized raw
SQL, and an immutable Row result type.

# Overview

Pool owns every physical connection for the lifetime of the process. Callers
borrow a connection per operation through Acquire/Release, or implicitly
through the Executor, which releases on every exit path. Acquisition blocks
when the pool is exhausted and fails with ErrAcquireTimeout once the
configured timeout elapses.

# Core types

  - Pool: bounded connection set; Start(ctx), Acquire(ctx), Stop(ctx), Stats().
  - Handle: exclusive claim on one connection; Release is idempotent.
  - Executor: Execute, FetchOne, FetchMany over pooled connections, plus
    WithConn for a read-your-writes scope on a single connection.
  - Row: ordered, immutable column-name-indexed result tuple, deliberately
    decoupled from any entity type; converting rows into validated domain
    models is the repository layer's job.

# Errors

Start failures surface as *ConnectionError. Statement failures surface as
*QueryError carrying the statement intent and wrapping the driver error.
A FetchOne that matches nothing returns (nil, nil): absence is a value here,
not an error. This layer never retries; it releases resources and propagates.
*/
package database
