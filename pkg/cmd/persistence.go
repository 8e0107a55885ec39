package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/dealflow/pkg/persistence"
	"github.com/dukex/dealflow/pkg/persistence/postgresql"
	"github.com/dukex/dealflow/pkg/persistence/sqlite"
)

var ErrUnsupportedDatabase = errors.New("unsupported database URL scheme")

var supportedPersistenceProviders = []string{"postgres", "postgresql", "sqlite"}

// NewPersistence opens and migrates the store named by databaseURL:
// postgres://… or postgresql://… for PostgreSQL, sqlite://path for SQLite.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider, rest := parsePersistenceProvider(databaseURL)

	switch provider {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case "sqlite":
		if rest == "" {
			return nil, fmt.Errorf("%w: sqlite URL needs a path", ErrUnsupportedDatabase)
		}

		return sqlite.NewPersistence(ctx, logger, rest)
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)",
			ErrUnsupportedDatabase, provider, strings.Join(supportedPersistenceProviders, ", "))
	}
}

func parsePersistenceProvider(databaseURL string) (string, string) {
	provider, rest, found := strings.Cut(databaseURL, "://")
	if !found {
		return "", databaseURL
	}

	return strings.ToLower(provider), rest
}
