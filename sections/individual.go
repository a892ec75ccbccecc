package sections

import (
	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

// Individual breaks every column down on its own.
func Individual(log *models.EventLog) (*Section, error) {
	var c charts

	res, err := analytics.CountBy(log, models.DimEventName)
	c.result("event_breakdown", "Event Breakdown", KindFunnel, res, err)

	res, err = analytics.TimeSeriesCount(log, models.BucketMonth, "", "")
	c.result("transfers_by_month", "Transfers by Month", KindLine, res, err)
	res, err = analytics.TimeSeriesCount(log, models.BucketWeek, "", "")
	c.result("transfers_by_week", "Transfers by Week", KindLine, res, err)
	res, err = analytics.TimeSeriesCount(log, models.BucketDay, "", "")
	c.result("transfers_by_day", "Transfers by Day", KindLine, res, err)

	res, err = share(log, models.DimRegion)
	c.result("region_share", "Region Distribution", KindPie, res, err)

	res, err = analytics.CountBy(log, models.DimPlatform)
	c.result("platform_distribution", "Platform Distribution", KindBar, res, err)
	res, err = share(log, models.DimPlatform)
	c.result("platform_share", "Platform Share", KindPie, res, err)

	res, err = analytics.CountBy(log, models.DimExperience)
	c.result("experience_distribution", "User Experience Distribution", KindBar, res, err)
	res, err = share(log, models.DimExperience)
	c.result("experience_share", "User Experience Share", KindPie, res, err)

	if c.err != nil {
		return nil, c.err
	}
	return &Section{Slug: "individual", Title: "Individual Analysis", Charts: c.list}, nil
}
