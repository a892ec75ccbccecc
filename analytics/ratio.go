package analytics

import (
	"fmt"

	"funnelboard/api/models"
)

// Ratio returns numerator/denominator*100 for every key present in either input.
// A zero or missing denominator yields 0, which is how completion rates are reported
// for segments with no created transfers.
func Ratio(numerator, denominator *models.AggregationResult) (*models.AggregationResult, error) {
	if !numerator.SameDims(denominator) {
		return nil, fmt.Errorf("%w: %v vs %v", ErrDimensionMismatch, numerator.Dims, denominator.Dims)
	}

	values := make(map[string]float64, numerator.Len())
	for _, row := range numerator.Rows {
		values[models.JoinKey(row.Key)] = 0
	}
	for _, row := range denominator.Rows {
		values[models.JoinKey(row.Key)] = 0
	}

	for k := range values {
		key := models.SplitKey(k, len(numerator.Dims))
		den, _ := denominator.Get(key...)
		if den == 0 {
			continue
		}
		num, _ := numerator.Get(key...)
		values[k] = num / den * 100
	}

	return buildResult(numerator.Dims, models.MeasurePercent, values), nil
}

// PercentageShare expresses every value as a percentage of the total.
func PercentageShare(counts *models.AggregationResult) (*models.AggregationResult, error) {
	total := counts.Total()
	if total == 0 {
		return nil, ErrEmptyDistribution
	}

	rows := make([]models.Row, 0, counts.Len())
	for _, row := range counts.Rows {
		rows = append(rows, models.Row{Key: row.Key, Value: row.Value / total * 100})
	}
	return models.NewAggregationResult(counts.Dims, models.MeasurePercent, rows), nil
}

// PercentageShareWithin normalizes values within each value of groupDim, e.g. the
// platform mix of every region. Groups whose total is zero report 0 everywhere.
func PercentageShareWithin(counts *models.AggregationResult, groupDim models.Dimension) (*models.AggregationResult, error) {
	pos := -1
	for i, d := range counts.Dims {
		if d == groupDim {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, fmt.Errorf("%w: %q not in %v", ErrUnknownDimension, groupDim, counts.Dims)
	}

	totals := make(map[string]float64)
	for _, row := range counts.Rows {
		totals[row.Key[pos]] += row.Value
	}

	rows := make([]models.Row, 0, counts.Len())
	for _, row := range counts.Rows {
		var pct float64
		if t := totals[row.Key[pos]]; t != 0 {
			pct = row.Value / t * 100
		}
		rows = append(rows, models.Row{Key: row.Key, Value: pct})
	}
	return models.NewAggregationResult(counts.Dims, models.MeasurePercent, rows), nil
}
