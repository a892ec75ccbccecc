package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"funnelboard/api/logger"
	"funnelboard/api/models"
)

// Base columns every source must provide, matched by exact header name.
const (
	ColumnTimestamp  = "dt"
	ColumnEventName  = "event_name"
	ColumnUserID     = "user_id"
	ColumnRegion     = "region"
	ColumnPlatform   = "platform"
	ColumnExperience = "experience"
)

// RequiredColumns lists the base columns in canonical order.
var RequiredColumns = []string{
	ColumnTimestamp, ColumnEventName, ColumnUserID, ColumnRegion, ColumnPlatform, ColumnExperience,
}

// Table is the raw tabular form every source is reduced to before validation.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableSource fetches a raw table for a source reference. ref is the part of the
// source string after "scheme://" (or the whole string for local files).
// Implementations wrap ErrSourceNotFound when the referenced data does not exist and
// ErrMissingColumn when the backend rejects one of the base columns.
type TableSource interface {
	FetchTable(ctx context.Context, ref string) (*Table, error)
}

// Loader turns a source string into a validated EventLog. It does no caching;
// see SessionCache for that.
type Loader struct {
	sources  map[string]TableSource
	location *time.Location
}

// NewLoader returns a loader that reads local files and interprets naive timestamps in loc.
func NewLoader(loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{
		sources:  map[string]TableSource{"": FileSource{}},
		location: loc,
	}
}

// Register adds a source for scheme, e.g. "s3" for "s3://bucket/key".
func (l *Loader) Register(scheme string, src TableSource) {
	l.sources[scheme] = src
}

// Load reads source and returns a fully populated, non-empty EventLog.
func (l *Loader) Load(ctx context.Context, source string) (*models.EventLog, error) {
	start := time.Now()
	scheme, ref := splitSource(source)

	src, ok := l.sources[scheme]
	if !ok {
		return nil, &LoadError{Kind: ErrSourceNotFound, Source: source, Err: fmt.Errorf("no backend configured for %q", scheme)}
	}

	table, err := src.FetchTable(ctx, ref)
	if err != nil {
		kind := ErrUnreadableSource
		switch {
		case errors.Is(err, ErrSourceNotFound):
			kind = ErrSourceNotFound
		case errors.Is(err, ErrMissingColumn):
			kind = ErrMissingColumn
		}
		return nil, &LoadError{Kind: kind, Source: source, Err: err}
	}

	log, err := l.parseTable(source, table)
	if err != nil {
		return nil, err
	}

	from, to := log.TimeRange()
	logger.Log.Info("Event log loaded",
		zap.String("source", source),
		zap.String("load_id", log.LoadID().String()),
		zap.Int("records", log.Len()),
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Duration("took", time.Since(start)),
	)
	return log, nil
}

func splitSource(source string) (scheme, ref string) {
	if i := strings.Index(source, "://"); i > 0 {
		return source[:i], source[i+3:]
	}
	return "", source
}

func (l *Loader) parseTable(source string, table *Table) (*models.EventLog, error) {
	idx := make(map[string]int, len(RequiredColumns))
	for _, col := range RequiredColumns {
		idx[col] = -1
	}
	for i, h := range table.Header {
		if _, wanted := idx[h]; wanted && idx[h] < 0 {
			idx[h] = i
		}
	}
	for _, col := range RequiredColumns {
		if idx[col] < 0 {
			return nil, &LoadError{Kind: ErrMissingColumn, Source: source, Column: col}
		}
	}

	records := make([]models.EventRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		if isBlankRow(row) {
			continue
		}
		line := i + 2

		values := make(map[string]string, len(RequiredColumns))
		for _, col := range RequiredColumns {
			v := cell(row, idx[col])
			if v == "" {
				return nil, &LoadError{Kind: ErrIncompleteRow, Source: source, Row: line, Column: col}
			}
			values[col] = v
		}

		ts, err := ParseTimestamp(values[ColumnTimestamp], l.location)
		if err != nil {
			return nil, &LoadError{Kind: ErrMalformedTimestamp, Source: source, Row: line, Column: ColumnTimestamp, Value: values[ColumnTimestamp], Err: err}
		}

		records = append(records, models.NewEventRecord(
			ts,
			values[ColumnEventName],
			values[ColumnUserID],
			values[ColumnRegion],
			values[ColumnPlatform],
			values[ColumnExperience],
		))
	}

	if len(records) == 0 {
		return nil, &LoadError{Kind: ErrEmptySource, Source: source}
	}
	return models.NewEventLog(source, records), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
