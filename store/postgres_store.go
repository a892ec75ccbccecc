package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes we translate into load errors.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// PostgresEventStore serves postgres://<table> sources.
type PostgresEventStore struct {
	db *sql.DB
}

// NewPostgresEventStore creates a new PostgresEventStore instance.
func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) FetchTable(ctx context.Context, table string) (*Table, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`
		SELECT dt, event_name, user_id::text, region, platform, experience
		FROM %s;
	`, quoteTable(table))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch string(pqErr.Code) {
			case pgUndefinedTable:
				return nil, fmt.Errorf("%w: postgres table %s", ErrSourceNotFound, table)
			case pgUndefinedColumn:
				return nil, fmt.Errorf("%w: %s", ErrMissingColumn, pqErr.Message)
			}
		}
		return nil, fmt.Errorf("failed to query events from %s: %w", table, err)
	}
	defer rows.Close()

	out := &Table{Header: append([]string(nil), RequiredColumns...)}
	for rows.Next() {
		var (
			dt                                              sql.NullTime
			eventName, userID, region, platform, experience sql.NullString
		)
		if err := rows.Scan(&dt, &eventName, &userID, &region, &platform, &experience); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		// NULLs become empty cells so the loader reports them as incomplete rows.
		var ts string
		if dt.Valid {
			ts = dt.Time.Format(time.RFC3339Nano)
		}
		out.Rows = append(out.Rows, []string{
			ts, eventName.String, userID.String, region.String, platform.String, experience.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error while reading %s: %w", table, err)
	}

	return out, nil
}

func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
