package analytics

import "errors"

var (
	// ErrEmptyDistribution is returned by PercentageShare when the values sum to zero.
	// Views should render a "no data" state for that chart instead of failing.
	ErrEmptyDistribution = errors.New("empty distribution")

	ErrNoDimensions      = errors.New("at least one dimension is required")
	ErrUnknownDimension  = errors.New("unknown dimension")
	ErrDimensionMismatch = errors.New("results are keyed by different dimensions")
	ErrInvalidBucket     = errors.New("invalid time bucket")
	ErrNoStages          = errors.New("funnel needs at least one stage")
)
