package sqlbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// conn bundles what every repository needs to talk to the database.
type conn struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

type scanner interface {
	Scan(dest ...any) error
}

func (c *conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, c.dialect.Rebind(query), args...)
}

func (c *conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, c.dialect.Rebind(query), args...)
}

func (c *conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, c.dialect.Rebind(query), args...)
}

func (c *conn) closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}

// rollback is deferred after BeginTx; it is a no-op once the transaction committed.
func (c *conn) rollback(ctx context.Context, tx *sql.Tx) {
	err := tx.Rollback()
	if err != nil && err != sql.ErrTxDone {
		c.logger.ErrorContext(ctx, "failed to rollback transaction", "error", err)
	}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}

	return id.String(), nil
}

// timestamp normalizes times to the precision both engines store.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func now() time.Time {
	return timestamp(time.Now())
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}

	s := ns.String

	return &s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: timestamp(*t), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}

	t := nt.Time.UTC()

	return &t
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}

	i := int(ni.Int64)

	return &i
}

// encodeJSON marshals v to a string column value, using fallback for nil.
func encodeJSON(v any, fallback string) (string, error) {
	if v == nil {
		return fallback, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON column: %w", err)
	}

	if string(b) == "null" {
		return fallback, nil
	}

	return string(b), nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		return "[]", nil
	}

	return encodeJSON(values, "[]")
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var values []string

	err := json.Unmarshal(raw, &values)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JSON list: %w", err)
	}

	return values, nil
}

func decodeData(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}

	err := json.Unmarshal(raw, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data blob: %w", err)
	}

	if data == nil {
		data = map[string]any{}
	}

	return data, nil
}

// rawJSON copies driver-owned bytes into a RawMessage.
func rawJSON(raw []byte, fallback string) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(fallback)
	}

	return json.RawMessage(append([]byte(nil), raw...))
}

func rawJSONString(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}

	return string(raw)
}
