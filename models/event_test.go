package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart_MondayBased(t *testing.T) {
	monday := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		ts := monday.AddDate(0, 0, i).Add(23 * time.Hour)
		assert.Equal(t, monday, WeekStart(ts), ts.Weekday().String())
	}
	assert.Equal(t, monday.AddDate(0, 0, 7), WeekStart(monday.AddDate(0, 0, 7)))
}

func TestNewEventRecord_DerivesBuckets(t *testing.T) {
	r := NewEventRecord(time.Date(2024, 2, 29, 18, 45, 0, 0, time.UTC), EventTransferFunded, "42", RegionOther, PlatformWeb, ExperienceExisting)

	assert.Equal(t, "2024-02", DimMonth.ValueOf(r))
	assert.Equal(t, "2024-02-26", DimWeek.ValueOf(r))
	assert.Equal(t, "2024-02-29", DimDay.ValueOf(r))
	assert.Equal(t, RegionOther, DimRegion.ValueOf(r))
}

func TestEventLog_IsImmutable(t *testing.T) {
	records := []EventRecord{
		NewEventRecord(time.Date(2023, 3, 6, 9, 0, 0, 0, time.UTC), EventTransferCreated, "1", RegionEurope, PlatformIOS, ExperienceNew),
		NewEventRecord(time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC), EventTransferFunded, "1", RegionEurope, PlatformIOS, ExperienceNew),
	}
	log := NewEventLog("events.csv", records)

	records[0].Region = RegionOther
	assert.Equal(t, RegionEurope, log.Record(0).Region)

	out := log.Records()
	out[1].UserID = "changed"
	assert.Equal(t, "1", log.Record(1).UserID)

	from, to := log.TimeRange()
	assert.Equal(t, records[1].Timestamp, from)
	assert.Equal(t, records[0].Timestamp, to)
}

func TestAggregationResult_Lookup(t *testing.T) {
	res := NewAggregationResult([]Dimension{DimRegion, DimPlatform}, MeasureCount, []Row{
		{Key: []string{RegionEurope, PlatformIOS}, Value: 3},
		{Key: []string{RegionOther, PlatformWeb}, Value: 1},
	})

	v, ok := res.Get(RegionEurope, PlatformIOS)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	_, ok = res.Get(RegionEurope)
	assert.False(t, ok)
	assert.Equal(t, 4.0, res.Total())

	assert.Equal(t, []string{"a b", "c"}, SplitKey(JoinKey([]string{"a b", "c"}), 2))
	assert.Empty(t, SplitKey("", 0))
}

func TestEventLog_NilLog(t *testing.T) {
	var log *EventLog
	assert.Equal(t, 0, log.Len())
	assert.Nil(t, log.Records())
	assert.Panics(t, func() { log.Record(0) })
}
