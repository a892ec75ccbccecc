package sections

import (
	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

// Comparative cross-tabulates pairs of attributes.
func Comparative(log *models.EventLog) (*Section, error) {
	var c charts

	res, err := analytics.CountBy(log, models.DimEventName, models.DimRegion)
	c.result("event_by_region", "Event by Region", KindBar, res, err)
	res, err = analytics.CountBy(log, models.DimPlatform, models.DimRegion)
	c.result("platform_by_region", "Platform Usage by Region", KindBar, res, err)
	res, err = analytics.CountBy(log, models.DimExperience, models.DimPlatform)
	c.result("experience_by_platform", "Experience by Platform", KindBar, res, err)

	res, err = analytics.TimeSeriesCount(log, models.BucketDay, "", models.DimExperience)
	c.result("daily_by_experience", "Daily Transfers by Experience", KindLine, res, err)

	res, err = completionRate(log)
	c.result("completion_by_region_experience", "Transfers Completed by Region and Experience", KindPie, res, err)

	if c.err != nil {
		return nil, c.err
	}
	return &Section{Slug: "comparative", Title: "Comparative Analysis", Charts: c.list}, nil
}

// completionRate is the share of users per region and experience who reached
// Transfer Transferred.
func completionRate(log *models.EventLog) (*models.AggregationResult, error) {
	transferred, err := analytics.UniqueUserCountBy(log, models.EventTransferTransferred, models.DimRegion, models.DimExperience)
	if err != nil {
		return nil, err
	}
	total, err := analytics.UniqueUserCountBy(log, "", models.DimRegion, models.DimExperience)
	if err != nil {
		return nil, err
	}
	return analytics.Ratio(transferred, total)
}
