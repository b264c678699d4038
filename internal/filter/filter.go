// Package filter narrows a record set by segment, insurer, state, city and
// opening date.
package filter

import (
	"time"

	"network-insights-go/internal/dataset"
	"network-insights-go/internal/types"
)

// Criteria selects records. An empty list accepts every value; From and To
// are inclusive calendar days.
type Criteria struct {
	Segments []string   `json:"segments,omitempty"`
	Insurers []string   `json:"insurers,omitempty"`
	States   []string   `json:"states,omitempty"`
	Cities   []string   `json:"cities,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

type set map[string]struct{}

func newSet(values []string) set {
	if len(values) == 0 {
		return nil
	}
	s := set{}
	for _, v := range values {
		s[dataset.Canonical(v)] = struct{}{}
	}
	return s
}

func (s set) accepts(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[dataset.Canonical(v)]
	return ok
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Empty reports whether the criteria accept everything.
func (c Criteria) Empty() bool {
	return len(c.Segments) == 0 && len(c.Insurers) == 0 && len(c.States) == 0 &&
		len(c.Cities) == 0 && c.From == nil && c.To == nil
}

// Narrows reports whether any categorical filter is set. The date window is
// not counted.
func (c Criteria) Narrows() bool {
	return len(c.Segments) > 0 || len(c.Insurers) > 0 || len(c.States) > 0 || len(c.Cities) > 0
}

// Months returns the YYYY-MM bounds of the date window, empty when open.
func (c Criteria) Months() (from, to string) {
	if c.From != nil {
		from = c.From.Format("2006-01")
	}
	if c.To != nil {
		to = c.To.Format("2006-01")
	}
	return from, to
}

// Apply returns a new record set holding the matching records. The source is
// not modified and the column set is kept.
func Apply(rs types.RecordSet, c Criteria) types.RecordSet {
	segments, insurers := newSet(c.Segments), newSet(c.Insurers)
	states, cities := newSet(c.States), newSet(c.Cities)
	out := make([]types.ServiceRecord, 0, rs.Len())
	for _, r := range rs.Records {
		if !segments.accepts(r.Segment) || !insurers.accepts(r.Insurer) ||
			!states.accepts(r.State) || !cities.accepts(r.City) {
			continue
		}
		d := day(r.OpenedAt)
		if c.From != nil && d.Before(day(*c.From)) {
			continue
		}
		if c.To != nil && d.After(day(*c.To)) {
			continue
		}
		out = append(out, r)
	}
	return rs.WithRecords(out)
}
