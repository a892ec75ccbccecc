package sections

import (
	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

// Detailed shows the transfer funnel per region and per region and platform.
func Detailed(log *models.EventLog) (*Section, error) {
	var c charts

	groups, err := analytics.FunnelSequence(log, models.TransferFunnel, models.DimRegion)
	c.funnel("region_funnels", "Region Wise Transfer Funnels", groups, err)
	groups, err = analytics.FunnelSequence(log, models.TransferFunnel, models.DimRegion, models.DimPlatform)
	c.funnel("region_platform_funnels", "Funnel by Region and Platform", groups, err)

	if c.err != nil {
		return nil, c.err
	}
	return &Section{Slug: "detailed", Title: "Detailed Analysis", Charts: c.list}, nil
}
