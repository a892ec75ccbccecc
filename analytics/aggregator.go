// Package analytics holds the pure aggregation functions every section is built from.
// None of them mutate the EventLog, and an EventLog with no matching rows yields an
// empty (or zero-filled) result rather than an error.
package analytics

import (
	"fmt"
	"sort"

	"funnelboard/api/models"
)

// CountBy counts records per distinct tuple of dims (a cross tabulation).
func CountBy(log *models.EventLog, dims ...models.Dimension) (*models.AggregationResult, error) {
	if err := validateDims(dims); err != nil {
		return nil, err
	}

	counts := make(map[string]float64)
	log.Range(func(r models.EventRecord) bool {
		counts[keyOf(r, dims)]++
		return true
	})

	return buildResult(dims, models.MeasureCount, counts), nil
}

// UniqueUserCountBy counts distinct user IDs per tuple of dims.
// eventFilter restricts the scan to one event name; "" means all events.
func UniqueUserCountBy(log *models.EventLog, eventFilter string, dims ...models.Dimension) (*models.AggregationResult, error) {
	if err := validateDims(dims); err != nil {
		return nil, err
	}

	users := make(map[string]map[string]struct{})
	log.Range(func(r models.EventRecord) bool {
		if eventFilter != "" && r.EventName != eventFilter {
			return true
		}
		k := keyOf(r, dims)
		set, ok := users[k]
		if !ok {
			set = make(map[string]struct{})
			users[k] = set
		}
		set[r.UserID] = struct{}{}
		return true
	})

	counts := make(map[string]float64, len(users))
	for k, set := range users {
		counts[k] = float64(len(set))
	}
	return buildResult(dims, models.MeasureUniqueUsers, counts), nil
}

// TimeSeriesCount counts records per time bucket, optionally split by a second
// dimension ("" for no split). Rows come back in chronological order. With a split,
// every observed bucket carries every observed split value, zero when absent.
func TimeSeriesCount(log *models.EventLog, bucket models.Bucket, eventFilter string, splitBy models.Dimension) (*models.AggregationResult, error) {
	timeDim, ok := bucket.Dimension()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBucket, bucket)
	}
	dims := []models.Dimension{timeDim}
	if splitBy != "" {
		if !splitBy.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, splitBy)
		}
		dims = append(dims, splitBy)
	}

	counts := make(map[string]float64)
	buckets := make(map[string]struct{})
	splits := make(map[string]struct{})
	log.Range(func(r models.EventRecord) bool {
		if eventFilter != "" && r.EventName != eventFilter {
			return true
		}
		counts[keyOf(r, dims)]++
		buckets[timeDim.ValueOf(r)] = struct{}{}
		if splitBy != "" {
			splits[splitBy.ValueOf(r)] = struct{}{}
		}
		return true
	})

	if splitBy != "" {
		for b := range buckets {
			for s := range splits {
				k := models.JoinKey([]string{b, s})
				if _, seen := counts[k]; !seen {
					counts[k] = 0
				}
			}
		}
	}

	return buildResult(dims, models.MeasureCount, counts), nil
}

func validateDims(dims []models.Dimension) error {
	if len(dims) == 0 {
		return ErrNoDimensions
	}
	for _, d := range dims {
		if !d.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownDimension, d)
		}
	}
	return nil
}

func keyOf(r models.EventRecord, dims []models.Dimension) string {
	values := make([]string, len(dims))
	for i, d := range dims {
		values[i] = d.ValueOf(r)
	}
	return models.JoinKey(values)
}

// buildResult sorts keys so that output is deterministic; time keys sort chronologically.
func buildResult(dims []models.Dimension, measure models.Measure, values map[string]float64) *models.AggregationResult {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]models.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, models.Row{Key: models.SplitKey(k, len(dims)), Value: values[k]})
	}
	return models.NewAggregationResult(dims, measure, rows)
}
