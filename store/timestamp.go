package store

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"2006/01/02 15:04:05",
}

// Largest serial a spreadsheet can hold (9999-12-31).
const maxSpreadsheetSerial = 2958465

// ParseTimestamp accepts the date-time renderings found in exported event sheets,
// including raw spreadsheet serial numbers. Values without a zone are read in loc;
// values with an offset are converted to loc, so equal instants always share the
// same calendar buckets.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty value")
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 && serial <= maxSpreadsheetSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
	}

	return time.Time{}, errors.New("unrecognized date-time format")
}
