// api/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Funnel event names observed in the transfer dataset.
const (
	EventTransferCreated     = "Transfer Created"
	EventTransferFunded      = "Transfer Funded"
	EventTransferTransferred = "Transfer Transferred"
)

// Known segmentation values. The loader does not reject other values.
const (
	RegionNorthAm = "NorthAm"
	RegionEurope  = "Europe"
	RegionOther   = "Other"

	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
	PlatformWeb     = "Web"

	ExperienceNew      = "new"
	ExperienceExisting = "existing"
)

// TransferFunnel is the default stage order used by the funnel views.
var TransferFunnel = []string{EventTransferCreated, EventTransferFunded, EventTransferTransferred}

// EventRecord represents a single user action in the funnel log.
type EventRecord struct {
	Timestamp  time.Time `json:"dt"`
	EventName  string    `json:"event_name"`
	UserID     string    `json:"user_id"`
	Region     string    `json:"region"`
	Platform   string    `json:"platform"`
	Experience string    `json:"experience"`

	// Calendar buckets, derived once from Timestamp by NewEventRecord.
	Month time.Time `json:"month"`
	Week  time.Time `json:"week"`
	Day   time.Time `json:"day"`
}

// NewEventRecord builds a record and derives its calendar buckets.
func NewEventRecord(ts time.Time, eventName, userID, region, platform, experience string) EventRecord {
	return EventRecord{
		Timestamp:  ts,
		EventName:  eventName,
		UserID:     userID,
		Region:     region,
		Platform:   platform,
		Experience: experience,
		Month:      MonthStart(ts),
		Week:       WeekStart(ts),
		Day:        DayStart(ts),
	}
}

// DayStart truncates t to midnight in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday of the Monday..Sunday week containing t.
func WeekStart(t time.Time) time.Time {
	day := DayStart(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// MonthStart returns the first day of t's calendar month.
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// EventLog is the immutable set of records produced by one load.
// Callers only get copies of records, never the backing slice.
type EventLog struct {
	source   string
	loadID   uuid.UUID
	loadedAt time.Time
	records  []EventRecord
}

// NewEventLog wraps records into a log. The slice is copied.
func NewEventLog(source string, records []EventRecord) *EventLog {
	cp := make([]EventRecord, len(records))
	copy(cp, records)
	return &EventLog{
		source:   source,
		loadID:   uuid.New(),
		loadedAt: time.Now().UTC(),
		records:  cp,
	}
}

func (l *EventLog) Source() string      { return l.source }
func (l *EventLog) LoadID() uuid.UUID   { return l.loadID }
func (l *EventLog) LoadedAt() time.Time { return l.loadedAt }

// Len returns the number of records. A nil log is empty.
func (l *EventLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.records)
}

// Record returns a copy of the i-th record. Unlike Len and Range it needs a
// non-nil log, and it panics when i is out of range.
func (l *EventLog) Record(i int) EventRecord {
	return l.records[i]
}

// Range calls fn for each record until fn returns false.
func (l *EventLog) Range(fn func(EventRecord) bool) {
	if l == nil {
		return
	}
	for _, r := range l.records {
		if !fn(r) {
			return
		}
	}
}

// Records returns a copy of all records.
func (l *EventLog) Records() []EventRecord {
	if l == nil {
		return nil
	}
	cp := make([]EventRecord, len(l.records))
	copy(cp, l.records)
	return cp
}

// TimeRange returns the earliest and latest timestamps. Both are zero for an empty log.
func (l *EventLog) TimeRange() (from, to time.Time) {
	l.Range(func(r EventRecord) bool {
		if from.IsZero() || r.Timestamp.Before(from) {
			from = r.Timestamp
		}
		if to.IsZero() || r.Timestamp.After(to) {
			to = r.Timestamp
		}
		return true
	})
	return from, to
}
