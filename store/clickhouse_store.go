// api/store/clickhouse_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"funnelboard/api/database"
	"funnelboard/api/logger"
	"funnelboard/api/models"
)

// ClickHouse server error codes we translate into load errors.
const (
	chUnknownIdentifier = 47
	chUnknownTable      = 60
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ClickHouseEventStore serves clickhouse://<table> sources and imports event logs
// into ClickHouse so large logs can be queried there.
type ClickHouseEventStore struct {
	conn ClickHouseConn
}

// ClickHouseConn is the slice of clickhouse.Conn the store needs.
type ClickHouseConn interface {
	Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
	Exec(ctx context.Context, query string, args ...any) error
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
}

func NewClickHouseEventStore(chClient *database.ClickHouseClient) *ClickHouseEventStore {
	return &ClickHouseEventStore{
		conn: chClient.Conn,
	}
}

// NewClickHouseEventStoreWithConn wraps an existing connection.
func NewClickHouseEventStoreWithConn(conn ClickHouseConn) *ClickHouseEventStore {
	return &ClickHouseEventStore{conn: conn}
}

func (s *ClickHouseEventStore) FetchTable(ctx context.Context, table string) (*Table, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	query := fmt.Sprintf(`
		SELECT dt, event_name, toString(user_id) AS user_id, region, platform, experience
		FROM %s
	`, table)

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		var exception *clickhouse.Exception
		if errors.As(err, &exception) {
			switch exception.Code {
			case chUnknownTable:
				return nil, fmt.Errorf("%w: clickhouse table %s", ErrSourceNotFound, table)
			case chUnknownIdentifier:
				return nil, fmt.Errorf("%w: %s", ErrMissingColumn, exception.Message)
			}
		}
		return nil, fmt.Errorf("failed to query events from %s: %w", table, err)
	}
	defer rows.Close()

	out := &Table{Header: append([]string(nil), RequiredColumns...)}
	for rows.Next() {
		var (
			dt                                              time.Time
			eventName, userID, region, platform, experience string
		)
		if err := rows.Scan(&dt, &eventName, &userID, &region, &platform, &experience); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		out.Rows = append(out.Rows, []string{
			dt.Format(time.RFC3339Nano), eventName, userID, region, platform, experience,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error while reading %s: %w", table, err)
	}

	return out, nil
}

// CreateTable creates the events table if it does not exist yet.
func (s *ClickHouseEventStore) CreateTable(ctx context.Context, table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			dt         DateTime64(3),
			event_name LowCardinality(String),
			user_id    String,
			region     LowCardinality(String),
			platform   LowCardinality(String),
			experience LowCardinality(String)
		) ENGINE = MergeTree
		ORDER BY (event_name, dt)
	`, table)

	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// InsertEvents batch-inserts every record of log into table.
func (s *ClickHouseEventStore) InsertEvents(ctx context.Context, table string, log *models.EventLog) error {
	if log.Len() == 0 {
		return nil
	}
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}

	// Column order must match the Append arguments below.
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (dt, event_name, user_id, region, platform, experience)
	`, table))
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	var appendErr error
	log.Range(func(r models.EventRecord) bool {
		appendErr = batch.Append(r.Timestamp, r.EventName, r.UserID, r.Region, r.Platform, r.Experience)
		return appendErr == nil
	})
	if appendErr != nil {
		_ = batch.Abort()
		return fmt.Errorf("failed to append event to batch: %w", appendErr)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	logger.Log.Info("Inserted events into ClickHouse",
		zap.String("table", table),
		zap.Int("records", log.Len()),
		zap.String("load_id", log.LoadID().String()),
	)
	return nil
}
