// Package database owns the SQL connection pool shared by the relational
// item store adapters. It opens PostgreSQL (pgx stdlib driver) or SQLite
// (modernc, pure Go) depending on the connection URL scheme, and exposes
// transaction scoping plus optional statement echo for diagnostics.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/ghuser/itemstore/pkg/logger"
)

// Backend identifies the store selected by a connection URL.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendRedis    Backend = "redis"
)

// ErrUnsupportedScheme is returned for connection URLs no backend understands.
var ErrUnsupportedScheme = errors.New("unsupported database url scheme")

// BackendFor inspects the scheme of rawURL.
func BackendFor(rawURL string) (Backend, error) {
	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok {
		if strings.HasPrefix(rawURL, "file:") {
			return BackendSQLite, nil
		}
		return "", fmt.Errorf("%w: missing scheme", ErrUnsupportedScheme)
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "sqlite", "sqlite3":
		return BackendSQLite, nil
	case "redis", "rediss":
		return BackendRedis, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Option configures a Database.
type Option func(*Database)

// WithQueryLog echoes every statement at debug level.
func WithQueryLog(enabled bool) Option {
	return func(d *Database) { d.logQueries = enabled }
}

// Database wraps *sql.DB with the dialect it speaks.
type Database struct {
	db         *sql.DB
	backend    Backend
	log        logger.Logger
	logQueries bool
}

// sqlitePragmas are applied to every SQLite pool on open.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA synchronous=NORMAL",
}

// NewPool opens a connection pool for rawURL and verifies connectivity.
// Redis URLs are rejected; they are served by pkg/redisx.
func NewPool(ctx context.Context, rawURL string, log logger.Logger, opts ...Option) (*Database, error) {
	backend, err := BackendFor(rawURL)
	if err != nil {
		return nil, err
	}

	d := &Database{backend: backend, log: log}
	for _, opt := range opts {
		opt(d)
	}

	switch backend {
	case BackendPostgres:
		d.db, err = sql.Open("pgx", rawURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		d.db.SetMaxOpenConns(10)
		d.db.SetMaxIdleConns(5)
		d.db.SetConnMaxLifetime(30 * time.Minute)
	case BackendSQLite:
		d.db, err = sql.Open("sqlite", sqlitePath(rawURL))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite allows one writer; a single connection also keeps
		// :memory: databases coherent across statements.
		d.db.SetMaxOpenConns(1)
		for _, p := range sqlitePragmas {
			if _, err := d.db.ExecContext(ctx, p); err != nil {
				_ = d.db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", p, err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a SQL backend", ErrUnsupportedScheme, backend)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.db.PingContext(pingCtx); err != nil {
		_ = d.db.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}

	return d, nil
}

// sqlitePath strips the sqlite:// scheme. "sqlite://items.db" is relative,
// "sqlite:///var/lib/items.db" is absolute and "sqlite://:memory:" is in-memory.
func sqlitePath(rawURL string) string {
	for _, prefix := range []string{"sqlite://", "sqlite3://"} {
		if strings.HasPrefix(rawURL, prefix) {
			return strings.TrimPrefix(rawURL, prefix)
		}
	}
	return rawURL
}

// DB returns the underlying *sql.DB for migrations and the event bus.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Backend reports which SQL engine the pool talks to.
func (d *Database) Backend() Backend {
	return d.backend
}

// Conn returns a DBTX over the pool, echoing statements when enabled.
func (d *Database) Conn() DBTX {
	return d.Trace(d.db)
}

// Trace wraps q so statements are echoed when query logging is enabled.
func (d *Database) Trace(q DBTX) DBTX {
	if !d.logQueries || d.log == nil {
		return q
	}
	return &tracedDBTX{next: q, log: d.log}
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise, including on panic.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// tracedDBTX echoes statements and their arguments at debug level.
type tracedDBTX struct {
	next DBTX
	log  logger.Logger
}

func (t *tracedDBTX) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.log.DebugContext(ctx, "sql exec", "query", compact(query), "args", args)
	return t.next.ExecContext(ctx, query, args...)
}

func (t *tracedDBTX) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	t.log.DebugContext(ctx, "sql query", "query", compact(query), "args", args)
	return t.next.QueryContext(ctx, query, args...)
}

func (t *tracedDBTX) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	t.log.DebugContext(ctx, "sql query", "query", compact(query), "args", args)
	return t.next.QueryRowContext(ctx, query, args...)
}

func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
