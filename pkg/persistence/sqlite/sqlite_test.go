package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/persistence/persistencetest"
	"github.com/dukex/dealflow/pkg/persistence/sqlbase"
	"github.com/dukex/dealflow/pkg/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence(t *testing.T) {
	persistencetest.Run(t, func(t *testing.T) persistence.Persistence {
		return persistencetest.NewSQLite(t)
	})
}

func TestNewPersistence_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "dealflow.db")

	first, err := sqlite.NewPersistence(ctx, logger, path)
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, err := sqlite.NewPersistence(ctx, logger, path)
	require.NoError(t, err)

	defer func() { _ = second.Close(ctx) }()

	manager := sqlbase.NewMigrationManager(logger, second.DB(), sqlbase.SQLiteDialect{}, nil)
	version, err := manager.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, version)

	var tables int

	err = second.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('deals', 'stage_transitions', 'automation_firings', 'assignment_cursors')",
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 4, tables)
}

func TestOpen_ConfiguresPragmas(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "x.db")+"?_txlock=immediate")
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	var foreignKeys int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}
