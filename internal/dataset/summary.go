package dataset

import (
	"network-insights-go/internal/types"
)

// Summarize computes the network-wide headline KPIs. Mean arrival is nil when
// no record carries an arrival time; rates are 0 for an empty set.
func Summarize(rs types.RecordSet) types.NetworkSummary {
	protocols := map[string]struct{}{}
	providers := map[string]struct{}{}
	cities := map[[2]string]struct{}{}
	var refunds, intermediated, arrivals int
	var arrivalSum float64

	for _, r := range rs.Records {
		protocols[r.ProtocolID] = struct{}{}
		if r.Provider != "" {
			providers[r.Provider] = struct{}{}
		}
		cities[[2]string{r.State, r.City}] = struct{}{}
		if r.IsRefund {
			refunds++
		}
		if r.IsIntermediate {
			intermediated++
		}
		if r.ArrivalMinutes != nil {
			arrivalSum += *r.ArrivalMinutes
			arrivals++
		}
	}

	s := types.NetworkSummary{
		TotalServices:     len(protocols),
		UniqueProviders:   len(providers),
		CitiesServed:      len(cities),
		RefundPct:         types.Percent(refunds, rs.Len()),
		IntermediationPct: types.Percent(intermediated, rs.Len()),
	}
	if arrivals > 0 {
		s.MeanArrival = types.Float(arrivalSum / float64(arrivals))
	}
	return s
}
