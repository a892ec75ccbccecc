package sections

import (
	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

// Demand tracks created transfers per region over time.
func Demand(log *models.EventLog) (*Section, error) {
	var c charts

	res, err := analytics.TimeSeriesCount(log, models.BucketMonth, models.EventTransferCreated, models.DimRegion)
	c.result("monthly_demand", "Monthly Demand for Transfers by Region", KindHeatmap, res, err)
	res, err = analytics.TimeSeriesCount(log, models.BucketWeek, models.EventTransferCreated, models.DimRegion)
	c.result("weekly_demand", "Weekly Demand for Transfers by Region", KindBar, res, err)
	res, err = analytics.TimeSeriesCount(log, models.BucketDay, models.EventTransferCreated, models.DimRegion)
	c.result("daily_demand", "Daily Demand for Transfers by Region", KindLine, res, err)

	if c.err != nil {
		return nil, c.err
	}
	return &Section{Slug: "demand", Title: "Demand Analysis", Charts: c.list}, nil
}
