package models

import "strings"

// Dimension names a field records can be grouped by.
type Dimension string

const (
	DimEventName  Dimension = "event_name"
	DimRegion     Dimension = "region"
	DimPlatform   Dimension = "platform"
	DimExperience Dimension = "experience"
	DimMonth      Dimension = "month"
	DimWeek       Dimension = "week"
	DimDay        Dimension = "day"
)

// Key layouts for time dimensions. Both sort lexically in chronological order.
const (
	DayKeyLayout   = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

// IsTime reports whether d is a calendar bucket dimension.
func (d Dimension) IsTime() bool {
	return d == DimMonth || d == DimWeek || d == DimDay
}

// Valid reports whether d is one of the known dimensions.
func (d Dimension) Valid() bool {
	switch d {
	case DimEventName, DimRegion, DimPlatform, DimExperience, DimMonth, DimWeek, DimDay:
		return true
	}
	return false
}

// ValueOf returns the grouping key of r along d.
func (d Dimension) ValueOf(r EventRecord) string {
	switch d {
	case DimEventName:
		return r.EventName
	case DimRegion:
		return r.Region
	case DimPlatform:
		return r.Platform
	case DimExperience:
		return r.Experience
	case DimMonth:
		return r.Month.Format(MonthKeyLayout)
	case DimWeek:
		return r.Week.Format(DayKeyLayout)
	case DimDay:
		return r.Day.Format(DayKeyLayout)
	}
	return ""
}

// Bucket is a time granularity for time series.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// Dimension maps a bucket onto its derived record field.
func (b Bucket) Dimension() (Dimension, bool) {
	switch b {
	case BucketDay:
		return DimDay, true
	case BucketWeek:
		return DimWeek, true
	case BucketMonth:
		return DimMonth, true
	}
	return "", false
}

// Measure describes what the values of an AggregationResult mean.
type Measure string

const (
	MeasureCount       Measure = "count"
	MeasureUniqueUsers Measure = "unique_users"
	MeasurePercent     Measure = "percent"
)

// Row is one key tuple and its value. len(Key) == len(Dims).
type Row struct {
	Key   []string `json:"key"`
	Value float64  `json:"value"`
}

// AggregationResult maps dimension tuples to a numeric measure.
// It is created fresh by every aggregation and never modified afterwards.
type AggregationResult struct {
	Dims    []Dimension `json:"dims"`
	Measure Measure     `json:"measure"`
	Rows    []Row       `json:"rows"`

	index map[string]int
}

const keySep = "\x1f"

// JoinKey flattens a key tuple into a single map key.
func JoinKey(values []string) string {
	return strings.Join(values, keySep)
}

// SplitKey is the inverse of JoinKey.
func SplitKey(key string, n int) []string {
	if n == 0 {
		return []string{}
	}
	return strings.SplitN(key, keySep, n)
}

// NewAggregationResult indexes rows for lookup. Rows are kept in the given order.
func NewAggregationResult(dims []Dimension, measure Measure, rows []Row) *AggregationResult {
	if rows == nil {
		rows = []Row{}
	}
	res := &AggregationResult{
		Dims:    append([]Dimension(nil), dims...),
		Measure: measure,
		Rows:    rows,
		index:   make(map[string]int, len(rows)),
	}
	for i, row := range rows {
		res.index[JoinKey(row.Key)] = i
	}
	return res
}

// Len returns the number of keys.
func (a *AggregationResult) Len() int {
	return len(a.Rows)
}

// Get looks up the value for a key tuple.
func (a *AggregationResult) Get(values ...string) (float64, bool) {
	i, ok := a.index[JoinKey(values)]
	if !ok {
		return 0, false
	}
	return a.Rows[i].Value, true
}

// Total sums every value.
func (a *AggregationResult) Total() float64 {
	var sum float64
	for _, row := range a.Rows {
		sum += row.Value
	}
	return sum
}

// SameDims reports whether two results are keyed by the same dimensions.
func (a *AggregationResult) SameDims(b *AggregationResult) bool {
	if len(a.Dims) != len(b.Dims) {
		return false
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] {
			return false
		}
	}
	return true
}

// FunnelStage is one step of a funnel for a single group.
type FunnelStage struct {
	Stage          string  `json:"stage"`
	Count          int     `json:"count"`
	PercentOfFirst float64 `json:"percent_of_first"`
}

// FunnelGroup holds the ordered stages for one group key.
// Key is empty when the funnel is not grouped.
type FunnelGroup struct {
	Key    []string      `json:"key"`
	Stages []FunnelStage `json:"stages"`
}
