package filter

import (
	"sort"
	"time"

	"network-insights-go/internal/types"
)

// Options lists the distinct values present for each filterable column.
type Options struct {
	Segments []string  `json:"segments"`
	Insurers []string  `json:"insurers"`
	States   []string  `json:"states"`
	Cities   []string  `json:"cities"`
	First    time.Time `json:"first"`
	Last     time.Time `json:"last"`
}

func distinct(rs types.RecordSet, get func(types.ServiceRecord) string) []string {
	seen := map[string]struct{}{}
	for _, r := range rs.Records {
		seen[get(r)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Available reports the values a caller can filter on and the date range
// covered by the set.
func Available(rs types.RecordSet) Options {
	o := Options{
		Segments: distinct(rs, func(r types.ServiceRecord) string { return r.Segment }),
		Insurers: distinct(rs, func(r types.ServiceRecord) string { return r.Insurer }),
		States:   distinct(rs, func(r types.ServiceRecord) string { return r.State }),
		Cities:   distinct(rs, func(r types.ServiceRecord) string { return r.City }),
	}
	for i, r := range rs.Records {
		if i == 0 || r.OpenedAt.Before(o.First) {
			o.First = r.OpenedAt
		}
		if i == 0 || r.OpenedAt.After(o.Last) {
			o.Last = r.OpenedAt
		}
	}
	return o
}
