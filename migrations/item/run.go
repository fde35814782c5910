// Package item holds the goose migrations for the items table, one directory
// per SQL dialect.
package item

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/ghuser/itemstore/pkg/database"
	"github.com/ghuser/itemstore/pkg/migrator"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationsFS embed.FS

// FS returns the migration files for backend.
func FS(backend database.Backend) (fs.FS, error) {
	switch backend {
	case database.BackendPostgres:
		return fs.Sub(migrationsFS, "postgres")
	case database.BackendSQLite:
		return fs.Sub(migrationsFS, "sqlite")
	default:
		return nil, fmt.Errorf("no sql migrations for backend %q", backend)
	}
}

// Up applies every pending migration to db.
func Up(ctx context.Context, db *database.Database) ([]string, error) {
	files, err := FS(db.Backend())
	if err != nil {
		return nil, err
	}
	return migrator.Up(ctx, db.DB(), db.Backend(), files)
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *database.Database) (string, error) {
	files, err := FS(db.Backend())
	if err != nil {
		return "", err
	}
	return migrator.Down(ctx, db.DB(), db.Backend(), files)
}

// Status reports each known migration and whether it has been applied.
func Status(ctx context.Context, db *database.Database) ([]migrator.MigrationStatus, error) {
	files, err := FS(db.Backend())
	if err != nil {
		return nil, err
	}
	return migrator.Status(ctx, db.DB(), db.Backend(), files)
}
