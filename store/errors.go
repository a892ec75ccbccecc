package store

import (
	"errors"
	"fmt"
)

// Load error kinds. Every load failure is fatal to the session: no partial log is returned.
var (
	ErrSourceNotFound     = errors.New("source not found")
	ErrMissingColumn      = errors.New("missing column")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrEmptySource        = errors.New("empty source")
	ErrIncompleteRow      = errors.New("incomplete row")
	ErrUnreadableSource   = errors.New("unreadable source")
)

// LoadError describes why a source could not be turned into an EventLog.
// Match it with errors.Is against the kinds above.
type LoadError struct {
	Kind   error
	Source string
	Row    int // 1-based line in the source, header included; 0 if not row specific
	Column string
	Value  string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s: %v", e.Source, e.Kind)
	if e.Column != "" {
		msg += fmt.Sprintf(" %q", e.Column)
	}
	if e.Row > 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

var errorCodes = map[error]string{
	ErrSourceNotFound:     "source_not_found",
	ErrMissingColumn:      "missing_column",
	ErrMalformedTimestamp: "malformed_timestamp",
	ErrEmptySource:        "empty_source",
	ErrIncompleteRow:      "incomplete_row",
	ErrUnreadableSource:   "unreadable_source",
}

// Code is a stable machine-readable name for Kind.
func (e *LoadError) Code() string {
	if code, ok := errorCodes[e.Kind]; ok {
		return code
	}
	return "load_failed"
}
