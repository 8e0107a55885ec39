package sqlbase_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dukex/dealflow/pkg/persistence/sqlbase"
	"github.com/dukex/dealflow/pkg/persistence/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationManager_AppliesInVersionOrder(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	migrations := map[int][]string{
		3: {"INSERT INTO steps (n) VALUES (3)"},
		1: {"CREATE TABLE steps (n INTEGER)", "INSERT INTO steps (n) VALUES (1)"},
		2: {"INSERT INTO steps (n) VALUES (2)"},
	}

	manager := sqlbase.NewMigrationManager(logger, db, sqlbase.SQLiteDialect{}, migrations)
	assert.Equal(t, 3, manager.LatestVersion())

	require.NoError(t, manager.RunMigrations(ctx))
	require.NoError(t, manager.RunMigrations(ctx))

	rows, err := db.QueryContext(ctx, "SELECT n FROM steps ORDER BY rowid")
	require.NoError(t, err)

	defer func() { _ = rows.Close() }()

	var got []int

	for rows.Next() {
		var n int
		require.NoError(t, rows.Scan(&n))

		got = append(got, n)
	}

	require.NoError(t, rows.Err())
	assert.Equal(t, []int{1, 2, 3}, got)

	version, err := manager.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestMigrationManager_FailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)

	defer func() { _ = db.Close() }()

	manager := sqlbase.NewMigrationManager(logger, db, sqlbase.SQLiteDialect{}, map[int][]string{
		1: {"CREATE TABLE ok (n INTEGER)"},
		2: {"CREATE TABLE broken (n INTEGER)", "INSERT INTO missing VALUES (1)"},
	})

	err = manager.RunMigrations(ctx)
	require.Error(t, err)

	version, err := manager.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE name = 'broken'").Scan(&count))
	assert.Equal(t, 0, count)
}
