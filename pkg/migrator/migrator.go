// Package migrator runs goose migrations from an embedded FS.
package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/ghuser/itemstore/pkg/database"
)

// MigrationStatus is one row of Status output.
type MigrationStatus struct {
	Version int64
	Source  string
	Applied bool
}

func dialectFor(backend database.Backend) (goose.Dialect, error) {
	switch backend {
	case database.BackendPostgres:
		return goose.DialectPostgres, nil
	case database.BackendSQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("migrator: backend %q has no sql dialect", backend)
	}
}

func newProvider(db *sql.DB, backend database.Backend, files fs.FS) (*goose.Provider, error) {
	dialect, err := dialectFor(backend)
	if err != nil {
		return nil, err
	}
	p, err := goose.NewProvider(dialect, db, files)
	if err != nil {
		return nil, fmt.Errorf("migrator: new provider: %w", err)
	}
	return p, nil
}

// Up applies all pending migrations and returns the sources it applied.
func Up(ctx context.Context, db *sql.DB, backend database.Backend, files fs.FS) ([]string, error) {
	p, err := newProvider(db, backend, files)
	if err != nil {
		return nil, err
	}
	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to up migrations: %w", err)
	}
	applied := make([]string, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Path)
	}
	return applied, nil
}

// Down rolls back the latest migration. It returns "" when nothing was applied.
func Down(ctx context.Context, db *sql.DB, backend database.Backend, files fs.FS) (string, error) {
	p, err := newProvider(db, backend, files)
	if err != nil {
		return "", err
	}
	result, err := p.Down(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) || (err == nil && result == nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to down migration: %w", err)
	}
	return result.Source.Path, nil
}

// Status lists every migration with its applied state.
func Status(ctx context.Context, db *sql.DB, backend database.Backend, files fs.FS) ([]MigrationStatus, error) {
	p, err := newProvider(db, backend, files)
	if err != nil {
		return nil, err
	}
	rows, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}
	out := make([]MigrationStatus, 0, len(rows))
	for _, r := range rows {
		out = append(out, MigrationStatus{
			Version: r.Source.Version,
			Source:  r.Source.Path,
			Applied: r.State == goose.StateApplied,
		})
	}
	return out, nil
}
