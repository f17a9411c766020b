package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrationFiles embed.FS

// MigrationResult describes one applied migration.
type MigrationResult struct {
	Version  int64
	Path     string
	Duration string
}

// RunMigrations applies every pending migration for the connection's dialect.
func (db *DB) RunMigrations(ctx context.Context) ([]MigrationResult, error) {
	provider, err := db.migrationProvider()
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	applied := make([]MigrationResult, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		applied = append(applied, MigrationResult{
			Version:  r.Source.Version,
			Path:     r.Source.Path,
			Duration: r.Duration.String(),
		})
	}
	return applied, nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := db.migrationProvider()
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func (db *DB) migrationProvider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations/"+db.Dialect.MigrationsSubdir())
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations for %s: %w", db.Dialect.MigrationsSubdir(), err)
	}
	provider, err := goose.NewProvider(db.Dialect.GooseDialect(), db.DB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}
