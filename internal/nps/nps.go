// Package nps computes Net Promoter Score from survey counts.
//
// A group with zero respondents has no score: it is left out of every result
// rather than reported as 0. Rate metrics elsewhere (refund %, intermediation %)
// use 0 for an empty denominator; the two policies are kept apart on purpose.
package nps

import (
	"sort"

	"network-insights-go/internal/types"
)

// Answer thresholds on the 0–10 survey scale.
const (
	PromoterMin  = 9
	DetractorMax = 6
)

// Score returns (promoters − detractors) / total × 100. ok is false when there
// are no respondents. Values are not clamped to [-100, 100].
func Score(c types.NPSCounts) (float64, bool) {
	total := c.Total()
	if total <= 0 {
		return 0, false
	}
	return float64(c.Promoters-c.Detractors) / float64(total) * 100, true
}

// Point is one defined NPS value.
type Point struct {
	Group       string  `json:"group"`
	Month       string  `json:"month,omitempty"`
	Respondents int     `json:"respondents"`
	NPS         float64 `json:"nps"`
}

// Tally adds one raw 0–10 answer to the counts.
func Tally(c types.NPSCounts, raw float64) types.NPSCounts {
	switch {
	case raw >= PromoterMin:
		c.Promoters++
	case raw <= DetractorMax:
		c.Detractors++
	default:
		c.Neutrals++
	}
	return c
}

// FromResponses builds (group, month) counts from the raw answers carried on
// service records. Records without an answer are skipped.
func FromResponses(records []types.ServiceRecord, group func(types.ServiceRecord) string) []types.NPSCounts {
	byKey := map[[2]string]types.NPSCounts{}
	for _, r := range records {
		if r.NPSRaw == nil {
			continue
		}
		k := [2]string{group(r), r.Month()}
		c, ok := byKey[k]
		if !ok {
			c = types.NPSCounts{Group: k[0], Month: k[1]}
		}
		byKey[k] = Tally(c, *r.NPSRaw)
	}
	out := make([]types.NPSCounts, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, c)
	}
	sortCounts(out)
	return out
}

// Merge sums rows sharing the key produced by key.
func Merge(counts []types.NPSCounts, key func(types.NPSCounts) (string, string)) []types.NPSCounts {
	byKey := map[[2]string]types.NPSCounts{}
	for _, c := range counts {
		g, m := key(c)
		k := [2]string{g, m}
		acc, ok := byKey[k]
		if !ok {
			acc = types.NPSCounts{Group: g, Month: m}
		}
		byKey[k] = acc.Add(c)
	}
	out := make([]types.NPSCounts, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, c)
	}
	sortCounts(out)
	return out
}

// Series returns NPS per (group, month); months without respondents are excluded.
func Series(counts []types.NPSCounts) []Point {
	return points(Merge(counts, func(c types.NPSCounts) (string, string) { return c.Group, c.Month }))
}

// Monthly returns the network-wide NPS per month.
func Monthly(counts []types.NPSCounts) []Point {
	return points(Merge(counts, func(c types.NPSCounts) (string, string) { return "", c.Month }))
}

// ByGroup returns NPS per group over all months.
func ByGroup(counts []types.NPSCounts) []Point {
	return points(Merge(counts, func(c types.NPSCounts) (string, string) { return c.Group, "" }))
}

// ForGroups returns the per-group NPS as a lookup; groups without respondents
// are absent.
func ForGroups(counts []types.NPSCounts) map[string]Point {
	out := map[string]Point{}
	for _, p := range ByGroup(counts) {
		out[p.Group] = p
	}
	return out
}

// InMonths keeps counts whose month falls in [from, to] (YYYY-MM, inclusive).
// An empty bound is open.
func InMonths(counts []types.NPSCounts, from, to string) []types.NPSCounts {
	out := make([]types.NPSCounts, 0, len(counts))
	for _, c := range counts {
		if from != "" && c.Month < from {
			continue
		}
		if to != "" && c.Month > to {
			continue
		}
		out = append(out, c)
	}
	return out
}

// InGroups keeps counts whose group is in groups.
func InGroups(counts []types.NPSCounts, groups map[string]struct{}) []types.NPSCounts {
	out := make([]types.NPSCounts, 0, len(counts))
	for _, c := range counts {
		if _, ok := groups[c.Group]; ok {
			out = append(out, c)
		}
	}
	return out
}

func points(counts []types.NPSCounts) []Point {
	out := make([]Point, 0, len(counts))
	for _, c := range counts {
		score, ok := Score(c)
		if !ok {
			continue
		}
		out = append(out, Point{Group: c.Group, Month: c.Month, Respondents: c.Total(), NPS: score})
	}
	return out
}

func sortCounts(cs []types.NPSCounts) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Group != cs[j].Group {
			return cs[i].Group < cs[j].Group
		}
		return cs[i].Month < cs[j].Month
	})
}
