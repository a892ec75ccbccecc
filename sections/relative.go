package sections

import (
	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

// Relative compares regions and platforms as ratios and shares.
func Relative(log *models.EventLog) (*Section, error) {
	var c charts

	res, err := transferRatio(log)
	c.result("transferred_vs_created", "Transferred vs Created by Region", KindPie, res, err)

	counts, err := analytics.CountBy(log, models.DimPlatform, models.DimRegion)
	if err == nil {
		res, err = analytics.PercentageShareWithin(counts, models.DimRegion)
	}
	c.result("platform_share_by_region", "Platform Preferences per Region", KindBar, res, err)

	creators, err := analytics.UniqueUserCountBy(log, models.EventTransferCreated, models.DimRegion)
	if err == nil {
		res, err = analytics.PercentageShare(creators)
	}
	c.result("regional_demand_share", "Regional Demand Share", KindPie, res, err)

	if c.err != nil {
		return nil, c.err
	}
	return &Section{Slug: "relative", Title: "Relative Analysis", Charts: c.list}, nil
}

// transferRatio is Transfer Transferred events as a percentage of Transfer
// Created events, per region.
func transferRatio(log *models.EventLog) (*models.AggregationResult, error) {
	byRegion, err := analytics.CountBy(log, models.DimEventName, models.DimRegion)
	if err != nil {
		return nil, err
	}

	var created, transferred []models.Row
	for _, row := range byRegion.Rows {
		switch row.Key[0] {
		case models.EventTransferCreated:
			created = append(created, models.Row{Key: row.Key[1:], Value: row.Value})
		case models.EventTransferTransferred:
			transferred = append(transferred, models.Row{Key: row.Key[1:], Value: row.Value})
		}
	}

	dims := []models.Dimension{models.DimRegion}
	return analytics.Ratio(
		models.NewAggregationResult(dims, models.MeasureCount, transferred),
		models.NewAggregationResult(dims, models.MeasureCount, created),
	)
}
