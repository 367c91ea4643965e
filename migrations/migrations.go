// Package migrations embeds the schema and applies it at startup.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/miriamlab/server/internal/logger"
)

//go:embed *.sql
var files embed.FS

const (
	queryCreateVersions = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	queryIsApplied = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`

	queryRecordVersion = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// Names lists the embedded migration files in apply order.
func Names() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply runs every migration not yet recorded in schema_migrations, each in its own transaction.
func Apply(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, queryCreateVersions); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := Names()
	if err != nil {
		return err
	}

	for _, name := range names {
		if err := applyOne(ctx, db, name); err != nil {
			return err
		}
	}

	return nil
}

func applyOne(ctx context.Context, db *pgxpool.Pool, name string) error {
	var applied bool
	if err := db.QueryRow(ctx, queryIsApplied, name).Scan(&applied); err != nil {
		return fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	if applied {
		return nil
	}

	body, err := files.ReadFile(name)
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("migration %s failed: %w", name, err)
	}

	if _, err := tx.Exec(ctx, queryRecordVersion, name); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("applied migration", "version", name)
	return nil
}
