// Package sqlite provides an embedded SQLite persistence implementation,
// used for single-node deployments and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/dealflow/pkg/persistence/sqlbase"
	_ "modernc.org/sqlite"
)

// Persistence implements the persistence layer for SQLite.
type Persistence struct {
	*sqlbase.Store
}

// NewPersistence opens the database at dsn, configures it and migrates the schema.
func NewPersistence(ctx context.Context, logger *slog.Logger, dsn string) (*Persistence, error) {
	database, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	dialect := sqlbase.SQLiteDialect{}
	migrationManager := sqlbase.NewMigrationManager(logger, database, dialect, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{Store: sqlbase.NewStore(database, dialect, logger)}, nil
}

// Open opens a SQLite database with WAL mode, foreign keys and a busy timeout.
// Timestamps are written in a sortable, parseable layout.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if !strings.Contains(dsn, "_time_format=") {
		separator := "?"
		if strings.Contains(dsn, "?") {
			separator = "&"
		}

		dsn += separator + "_time_format=sqlite"
	}

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Single connection for SQLite to avoid locking issues.
	database.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		_, err := database.ExecContext(ctx, pragma)
		if err != nil {
			_ = database.Close()

			return nil, fmt.Errorf("failed to exec %q: %w", pragma, err)
		}
	}

	return database, nil
}
