package sections

import (
	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

var (
	baseColumns    = []string{"dt", "event_name", "user_id", "region", "platform", "experience"}
	derivedColumns = []string{string(models.DimMonth), string(models.DimWeek), string(models.DimDay)}
)

// Home describes the dataset and shows how the events split by name.
func Home(log *models.EventLog) (*Section, error) {
	from, to := log.TimeRange()
	overview := &Overview{
		Source:         log.Source(),
		Records:        log.Len(),
		From:           from,
		To:             to,
		Columns:        append([]string(nil), baseColumns...),
		DerivedColumns: append([]string(nil), derivedColumns...),
	}

	var c charts
	res, err := analytics.CountBy(log, models.DimEventName)
	c.result("events", "Events by Name", KindBar, res, err)
	if c.err != nil {
		return nil, c.err
	}

	return &Section{Slug: "home", Title: "Home", Overview: overview, Charts: c.list}, nil
}
