package sqlbase

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between the supported SQL engines.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect interface {
	Name() string
	Rebind(query string) string
	// ForUpdate is appended to SELECTs that read a row about to be rewritten
	// inside the same transaction.
	ForUpdate() string
	MigrationsTableDDL() string
}

type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

// Rebind replaces '?' placeholders with $1, $2, ...
func (PostgresDialect) Rebind(query string) string {
	var (
		b strings.Builder
		n int
	)

	b.Grow(len(query) + 8)

	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])

			continue
		}

		n++

		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}

	return b.String()
}

func (PostgresDialect) ForUpdate() string { return " FOR UPDATE" }

func (PostgresDialect) MigrationsTableDDL() string {
	return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
}

// SQLiteDialect relies on SQLite's single-writer locking instead of row locks.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return "sqlite" }

func (SQLiteDialect) Rebind(query string) string { return query }

func (SQLiteDialect) ForUpdate() string { return "" }

func (SQLiteDialect) MigrationsTableDDL() string {
	return `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}
