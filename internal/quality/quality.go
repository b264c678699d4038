// Package quality builds the satisfaction and responsiveness views: NPS over
// time, NPS rankings by city and provider, and mean arrival time (TMC) by
// segment and insurer.
package quality

import (
	"sort"
	"strings"

	"network-insights-go/internal/aggregator"
	"network-insights-go/internal/nps"
	"network-insights-go/internal/types"
)

// DefaultMinEvaluations is the respondent floor for NPS rankings.
const DefaultMinEvaluations = 5

// RankSize is the length of the best and worst lists.
const RankSize = 10

// Ranking holds the best and worst groups by NPS.
type Ranking struct {
	Best  []nps.Point `json:"best"`
	Worst []nps.Point `json:"worst"`
}

// Arrival is the mean arrival time of one group. Minutes is 0 when the group
// has no arrival data.
type Arrival struct {
	Key      string  `json:"key"`
	Services int     `json:"services"`
	Minutes  float64 `json:"minutes"`
}

// Report is the full quality view of a record set.
type Report struct {
	Monthly          []nps.Point `json:"monthly_nps"`
	ByCity           Ranking     `json:"nps_by_city"`
	ByProvider       Ranking     `json:"nps_by_provider"`
	ArrivalBySegment []Arrival   `json:"arrival_by_segment"`
	ArrivalByInsurer []Arrival   `json:"arrival_by_insurer"`
}

// Build assembles the report. counts are pre-aggregated answers keyed by
// provider; when empty, provider NPS and the monthly series come from the
// raw answers on the records. City NPS always comes from raw answers.
func Build(rs types.RecordSet, counts []types.NPSCounts, minEvaluations int) Report {
	byProvider := counts
	if len(byProvider) == 0 {
		byProvider = nps.FromResponses(rs.Records, func(r types.ServiceRecord) string { return r.Provider })
	}
	byCity := nps.FromResponses(rs.Records, func(r types.ServiceRecord) string {
		return r.State + aggregator.KeySeparator + r.City
	})
	return Report{
		Monthly:          nps.Monthly(byProvider),
		ByCity:           Rank(nps.ByGroup(byCity), minEvaluations),
		ByProvider:       Rank(nps.ByGroup(byProvider), minEvaluations),
		ArrivalBySegment: ArrivalBy(rs, aggregator.Segment),
		ArrivalByInsurer: ArrivalBy(rs, aggregator.Insurer),
	}
}

// Rank keeps groups with at least min respondents and returns the RankSize
// highest and lowest. Ties go to the group with more respondents, then by name.
func Rank(points []nps.Point, min int) Ranking {
	kept := make([]nps.Point, 0, len(points))
	for _, p := range points {
		if p.Respondents >= min {
			kept = append(kept, p)
		}
	}
	best := append([]nps.Point(nil), kept...)
	sort.SliceStable(best, func(i, j int) bool {
		if best[i].NPS != best[j].NPS {
			return best[i].NPS > best[j].NPS
		}
		if best[i].Respondents != best[j].Respondents {
			return best[i].Respondents > best[j].Respondents
		}
		return best[i].Group < best[j].Group
	})
	worst := append([]nps.Point(nil), kept...)
	sort.SliceStable(worst, func(i, j int) bool {
		if worst[i].NPS != worst[j].NPS {
			return worst[i].NPS < worst[j].NPS
		}
		if worst[i].Respondents != worst[j].Respondents {
			return worst[i].Respondents > worst[j].Respondents
		}
		return worst[i].Group < worst[j].Group
	})
	return Ranking{Best: limit(best), Worst: limit(worst)}
}

func limit(ps []nps.Point) []nps.Point {
	if len(ps) > RankSize {
		return ps[:RankSize]
	}
	return ps
}

// ArrivalBy returns mean arrival per value of key, slowest first.
func ArrivalBy(rs types.RecordSet, key aggregator.Field) []Arrival {
	groups := aggregator.Metrics(rs.Records, key)
	out := make([]Arrival, 0, len(groups))
	for _, g := range groups {
		out = append(out, Arrival{Key: g.Key, Services: g.Services, Minutes: g.MeanArrival})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return strings.Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}
