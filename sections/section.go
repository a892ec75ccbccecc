// Package sections turns an EventLog into the view-ready payload of each dashboard
// section. Builders are pure: the same log always yields the same Section.
package sections

import (
	"errors"
	"time"

	"funnelboard/api/analytics"
	"funnelboard/api/models"
)

type ChartKind string

const (
	KindBar     ChartKind = "bar"
	KindPie     ChartKind = "pie"
	KindHeatmap ChartKind = "heatmap"
	KindFunnel  ChartKind = "funnel"
	KindLine    ChartKind = "line"
)

type ChartStatus string

const (
	StatusOK     ChartStatus = "ok"
	StatusNoData ChartStatus = "no_data"
)

// Chart is one visual of a section. Exactly one of Result or Funnels is set
// when Status is ok.
type Chart struct {
	ID      string                    `json:"id"`
	Title   string                    `json:"title"`
	Kind    ChartKind                 `json:"kind"`
	Status  ChartStatus               `json:"status"`
	Result  *models.AggregationResult `json:"result,omitempty"`
	Funnels []models.FunnelGroup      `json:"funnels,omitempty"`
}

// Overview summarizes the loaded dataset for the home section.
type Overview struct {
	Source         string    `json:"source"`
	Records        int       `json:"records"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`
	Columns        []string  `json:"columns"`
	DerivedColumns []string  `json:"derived_columns"`
}

type Section struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Overview *Overview `json:"overview,omitempty"`
	Charts   []Chart   `json:"charts"`
}

// Chart returns the chart with the given id.
func (s *Section) Chart(id string) (Chart, bool) {
	for _, c := range s.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// charts collects a section's charts. The first aggregation error other than an
// empty distribution is kept and aborts the build.
type charts struct {
	list []Chart
	err  error
}

func (c *charts) result(id, title string, kind ChartKind, res *models.AggregationResult, err error) {
	chart := Chart{ID: id, Title: title, Kind: kind, Status: StatusOK, Result: res}
	switch {
	case errors.Is(err, analytics.ErrEmptyDistribution):
		chart.Status, chart.Result = StatusNoData, nil
	case err != nil:
		if c.err == nil {
			c.err = err
		}
		return
	case res.Len() == 0:
		chart.Status = StatusNoData
	}
	c.list = append(c.list, chart)
}

func (c *charts) funnel(id, title string, groups []models.FunnelGroup, err error) {
	if err != nil {
		if c.err == nil {
			c.err = err
		}
		return
	}
	chart := Chart{ID: id, Title: title, Kind: KindFunnel, Status: StatusOK, Funnels: groups}
	if len(groups) == 0 {
		chart.Status = StatusNoData
	}
	c.list = append(c.list, chart)
}

// share counts along dim and converts the counts to percentages.
func share(log *models.EventLog, dim models.Dimension) (*models.AggregationResult, error) {
	counts, err := analytics.CountBy(log, dim)
	if err != nil {
		return nil, err
	}
	return analytics.PercentageShare(counts)
}
