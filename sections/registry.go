package sections

import (
	"errors"

	"funnelboard/api/models"
)

var ErrUnknownSection = errors.New("unknown section")

// Builder renders one section from a loaded log.
type Builder func(log *models.EventLog) (*Section, error)

type Entry struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	build Builder
}

// Build renders the section.
func (e Entry) Build(log *models.EventLog) (*Section, error) {
	return e.build(log)
}

var registry = []Entry{
	{Slug: "home", Title: "Home", build: Home},
	{Slug: "individual", Title: "Individual Analysis", build: Individual},
	{Slug: "comparative", Title: "Comparative Analysis", build: Comparative},
	{Slug: "demand", Title: "Demand Analysis", build: Demand},
	{Slug: "relative", Title: "Relative Analysis", build: Relative},
	{Slug: "detailed", Title: "Detailed Analysis", build: Detailed},
}

// All lists the sections in display order.
func All() []Entry {
	return append([]Entry(nil), registry...)
}

// Lookup finds a section by slug.
func Lookup(slug string) (Entry, error) {
	for _, e := range registry {
		if e.Slug == slug {
			return e, nil
		}
	}
	return Entry{}, ErrUnknownSection
}
