// Package db is the SQL-first data access layer behind jobly. It wraps
// database/sql with context-aware helpers, hook dispatch, unified error
// mapping and transaction management. It is NOT an ORM: all SQL is explicit
// and written by the repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Skryldev/jobly/sqlbuild"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "postgres", "mysql", or "sqlite3".
	DriverName string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Default query timeout applied when no deadline is set on the context.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// Hooks executed around every statement (logging, metrics).
	// nil entries are silently skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────────────────────

// DB is a thin, concurrency-safe wrapper around *sql.DB.
//
// All methods accept a context.Context so callers always control timeouts
// and cancellation. The underlying *sql.DB is accessible via Raw().
type DB struct {
	runner
	sqldb *sql.DB
}

// Open opens the database described by cfg and verifies connectivity with Ping.
// Callers are responsible for calling Close() when the application shuts down.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("jobly/db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("jobly/db: DriverName must not be empty")
	}
	dialect, err := sqlbuild.DialectFor(cfg.DriverName)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: %w", err)
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("jobly/db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	d := &DB{
		runner: runner{
			conn:    sqldb,
			hooks:   newHookChain(cfg.Hooks),
			errMap:  DefaultErrorMapper(),
			dialect: dialect,
			timeout: cfg.DefaultTimeout,
		},
		sqldb: sqldb,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("jobly/db: ping: %w", d.mapErr(err))
	}

	return d, nil
}

// MustOpen is like Open but panics on error.
func MustOpen(cfg Config) *DB {
	d, err := Open(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

// Raw returns the underlying *sql.DB, e.g. for running migrations.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// SetErrorMapper replaces the default error mapper with a custom one.
func (d *DB) SetErrorMapper(m ErrorMapper) { d.errMap = m }

// Close closes all pooled connections and frees resources.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics for monitoring.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// runner: statement dispatch shared by DB and Tx
// ─────────────────────────────────────────────────────────────────────────────

// conn is satisfied by *sql.DB and *sql.Tx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// runner wraps every statement with the default timeout, the hook chain and
// the error mapper.
type runner struct {
	conn    conn
	hooks   hookChain
	errMap  ErrorMapper
	dialect sqlbuild.Dialect
	timeout time.Duration
}

// Dialect returns the SQL dialect matching the driver.
func (r *runner) Dialect() sqlbuild.Dialect { return r.dialect }

// Exec executes a statement that returns no rows (INSERT, UPDATE, DELETE, DDL).
func (r *runner) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	r.hooks.Before(ctx, query, args)
	res, err := r.conn.ExecContext(ctx, query, args...)
	err = r.mapErr(err)
	r.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows.
// The caller MUST close the returned *sql.Rows.
func (r *runner) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	// Rows are read after return, so the default deadline is left to expire
	// on its own instead of being cancelled here.
	ctx, _ = r.withTimeout(ctx) //nolint:govet

	start := time.Now()
	r.hooks.Before(ctx, query, args)
	rows, err := r.conn.QueryContext(ctx, query, args...)
	err = r.mapErr(err)
	r.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row.
// ErrNotFound is returned from Scan when no row matches.
func (r *runner) QueryRow(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := r.withTimeout(ctx)

	start := time.Now()
	r.hooks.Before(ctx, query, args)
	raw := r.conn.QueryRowContext(ctx, query, args...)
	return &Row{
		raw:    raw,
		errMap: r.errMap,
		done:   cancel,
		trace:  rowTrace{hooks: r.hooks, ctx: ctx, query: query, args: args, start: start},
	}
}

// Prepare creates a prepared statement for repeated use.
// The caller is responsible for calling stmt.Close().
func (r *runner) Prepare(ctx context.Context, query string) (*Stmt, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	s, err := r.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, r.mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hooks: r.hooks, errMap: r.errMap}, nil
}

// withTimeout applies the default timeout unless ctx already has a deadline.
func (r *runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *runner) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return r.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
// The query's outcome is only known once the row is scanned, so hooks
// receive AfterQuery from Scan.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
	done   context.CancelFunc
	trace  rowTrace
}

type rowTrace struct {
	hooks hookChain
	ctx   context.Context
	query string
	args  []any
	start time.Time
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	if r.done != nil {
		defer r.done()
	}
	err := r.raw.Scan(dest...)
	if err != nil {
		err = r.errMap.Map(err)
	}
	t := r.trace
	t.hooks.After(t.ctx, t.query, t.args, time.Since(t.start), err)
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Stmt
// ─────────────────────────────────────────────────────────────────────────────

// Stmt wraps a prepared *sql.Stmt with hook dispatch and error mapping.
type Stmt struct {
	stmt   *sql.Stmt
	query  string
	hooks  hookChain
	errMap ErrorMapper
}

// Exec executes the prepared statement.
func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		err = s.errMap.Map(err)
	}
	s.hooks.After(ctx, s.query, args, time.Since(start), err)
	return res, err
}

// QueryRow executes the prepared statement expecting one row.
func (s *Stmt) QueryRow(ctx context.Context, args ...any) *Row {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	raw := s.stmt.QueryRowContext(ctx, args...)
	return &Row{
		raw:    raw,
		errMap: s.errMap,
		trace:  rowTrace{hooks: s.hooks, ctx: ctx, query: s.query, args: args, start: start},
	}
}

// Close releases the prepared statement resources.
func (s *Stmt) Close() error { return s.stmt.Close() }

// ─────────────────────────────────────────────────────────────────────────────
// WithRetry
// ─────────────────────────────────────────────────────────────────────────────

// RetryConfig controls retry behaviour for transient errors.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	// RetryOn decides whether a given error should trigger a retry.
	// Defaults to retrying on ErrDeadlock, ErrTimeout and ErrConnectionFailed.
	RetryOn func(error) bool
}

// WithRetry executes fn, retrying on transient errors per cfg. fn must be
// idempotent. A MaxAttempts below one runs fn once.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	retryOn := cfg.RetryOn
	if retryOn == nil {
		retryOn = func(err error) bool {
			return IsDeadlock(err) || IsTimeout(err) || IsConnectionFailed(err)
		}
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryOn(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("jobly/db: all %d attempts failed, last error: %w", attempts, lastErr)
}
