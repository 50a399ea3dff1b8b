package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config holds pool construction parameters. They are supplied once at
// startup and never re-read afterwards.
type Config struct {
	// DriverName is the database/sql driver to open connections with
	// ("pgx" in production, "sqlite" in tests).
	DriverName string

	// DSN is the driver connection string.
	DSN string

	// MinConns is the number of idle connections kept open.
	MinConns int

	// MaxConns bounds the number of open connections. The in-use count can
	// never exceed it.
	MaxConns int

	// AcquireTimeout bounds how long Acquire waits for a free connection.
	AcquireTimeout time.Duration

	// ConnMaxLifetime recycles connections older than this.
	ConnMaxLifetime time.Duration

	// HealthCheckInterval enables a background liveness probe when positive.
	HealthCheckInterval time.Duration
}

// Pool owns a bounded set of live database connections for the lifetime of
// the process. It is the only shared mutable resource in the data layer; all
// acquire/release accounting is synchronized internally and callers never
// touch pool internals directly.
type Pool struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	db      *sql.DB
	started bool
	closed  bool
	stop    chan struct{}

	inUse           atomic.Int64
	acquires        atomic.Int64
	acquireTimeouts atomic.Int64
}

// Handle is an exclusive claim on one pooled connection. It must be released
// exactly once; Release is idempotent so deferred releases on error paths are
// safe.
type Handle struct {
	conn *sql.Conn
	pool *Pool
	once sync.Once
}

// Conn returns the underlying connection.
func (h *Handle) Conn() *sql.Conn { return h.conn }

// Release returns the connection to the pool.
func (h *Handle) Release() error {
	var err error
	h.once.Do(func() {
		err = h.conn.Close()
		h.pool.inUse.Add(-1)
	})
	return err
}

// NewPool creates a pool. No connections are opened until Start.
func NewPool(cfg Config, logger *zap.Logger) *Pool {
	return &Pool{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "db_pool")),
	}
}

// Start opens the pool and verifies the database is reachable. Calling Start
// on a running pool returns ErrAlreadyStarted; a stopped pool cannot be
// restarted.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if p.started {
		return ErrAlreadyStarted
	}

	db, err := sql.Open(p.cfg.DriverName, p.cfg.DSN)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	db.SetMaxOpenConns(p.cfg.MaxConns)
	db.SetMaxIdleConns(p.cfg.MinConns)
	db.SetConnMaxLifetime(p.cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return &ConnectionError{Err: err}
	}

	p.db = db
	p.started = true
	p.stop = make(chan struct{})

	if p.cfg.HealthCheckInterval > 0 {
		go p.healthCheckLoop()
	}

	p.logger.Info("database pool started",
		zap.String("driver", p.cfg.DriverName),
		zap.Int("min_conns", p.cfg.MinConns),
		zap.Int("max_conns", p.cfg.MaxConns),
		zap.Duration("acquire_timeout", p.cfg.AcquireTimeout),
	)

	return nil
}

// Acquire claims an exclusive connection, blocking until one is free or the
// acquire timeout elapses. On timeout no connection is held and
// ErrAcquireTimeout is returned.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	p.mu.Lock()
	db := p.db
	switch {
	case p.closed:
		p.mu.Unlock()
		return nil, ErrClosed
	case !p.started:
		p.mu.Unlock()
		return nil, ErrNotStarted
	}
	p.mu.Unlock()

	acquireCtx := ctx
	var cancel context.CancelFunc
	if p.cfg.AcquireTimeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	conn, err := db.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			p.acquireTimeouts.Add(1)
			return nil, fmt.Errorf("%w after %s", ErrAcquireTimeout, p.cfg.AcquireTimeout)
		}
		return nil, fmt.Errorf("database: acquire: %w", err)
	}

	p.inUse.Add(1)
	p.acquires.Add(1)
	return &Handle{conn: conn, pool: p}, nil
}

// Stop closes all connections. Subsequent Acquire calls fail with ErrClosed.
// Stopping an already-stopped pool is a no-op.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	if !p.started {
		p.closed = true
		return nil
	}

	p.closed = true
	close(p.stop)
	p.logger.Info("database pool stopping")

	return p.db.Close()
}

// Ping probes the database on a pooled connection.
func (p *Pool) Ping(ctx context.Context) error {
	p.mu.Lock()
	db := p.db
	closed, started := p.closed, p.started
	p.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if !started {
		return ErrNotStarted
	}
	return db.PingContext(ctx)
}

// Stats is a point-in-time snapshot of pool usage.
type Stats struct {
	MaxConns        int
	Open            int
	InUse           int64
	Idle            int
	WaitCount       int64
	WaitDuration    time.Duration
	Acquires        int64
	AcquireTimeouts int64
}

// Stats returns current pool counters. InUse counts outstanding handles; it
// returns to its pre-acquire value after every acquire/release pair.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()

	s := Stats{
		MaxConns:        p.cfg.MaxConns,
		InUse:           p.inUse.Load(),
		Acquires:        p.acquires.Load(),
		AcquireTimeouts: p.acquireTimeouts.Load(),
	}
	if db != nil {
		dbs := db.Stats()
		s.Open = dbs.OpenConnections
		s.Idle = dbs.Idle
		s.WaitCount = dbs.WaitCount
		s.WaitDuration = dbs.WaitDuration
	}
	return s
}

func (p *Pool) healthCheckLoop() {
	ticker := time.NewTicker(p.cfg.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.Ping(ctx); err != nil {
			if !errors.Is(err, ErrClosed) {
				p.logger.Error("database health check failed", zap.Error(err))
			}
		} else {
			s := p.Stats()
			p.logger.Debug("database health check passed",
				zap.Int("open", s.Open),
				zap.Int64("in_use", s.InUse),
				zap.Int("idle", s.Idle),
			)
		}
		cancel()
	}
}
