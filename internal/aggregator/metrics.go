package aggregator

import (
	"strings"

	"network-insights-go/internal/types"
)

const (
	colServices        = "services"
	colProviders       = "providers"
	colRefunds         = "refunds"
	colIntermediations = "intermediations"
	colMeanArrival     = "mean_arrival"
	colTotalValue      = "total_value"
)

// KeySeparator joins multi-part group keys.
const KeySeparator = "/"

var metricSpecs = []Spec{
	{Output: colServices, Source: ProtocolID, Reduce: NUnique},
	{Output: colProviders, Source: Provider, Reduce: NUnique},
	{Output: colRefunds, Source: IsRefund, Reduce: Sum},
	{Output: colIntermediations, Source: IsIntermediate, Reduce: Sum},
	{Output: colMeanArrival, Source: Arrival, Reduce: Mean},
	{Output: colTotalValue, Source: ItemValue, Reduce: Sum},
}

// Metrics reduces records to one GroupMetrics row per key combination.
// Services are distinct protocol ids; a group with no arrival values has
// HasArrival false and MeanArrival 0.
func Metrics(records []types.ServiceRecord, keys ...Field) []types.GroupMetrics {
	t := Aggregate(records, keys, metricSpecs)
	out := make([]types.GroupMetrics, 0, len(t.Rows))
	for _, row := range t.Rows {
		g := types.GroupMetrics{
			Key:             strings.Join(row.Keys, KeySeparator),
			KeyParts:        row.Keys,
			Services:        int(row.Value(colServices)),
			Providers:       int(row.Value(colProviders)),
			Refunds:         int(row.Value(colRefunds)),
			Intermediations: int(row.Value(colIntermediations)),
			TotalValue:      row.Value(colTotalValue),
		}
		if row.Defined(colMeanArrival) {
			g.MeanArrival = row.Value(colMeanArrival)
			g.HasArrival = true
		}
		out = append(out, g)
	}
	return out
}

// CityMetrics groups by (state, city).
func CityMetrics(rs types.RecordSet) []types.GroupMetrics {
	return Metrics(rs.Records, State, City)
}

// ProviderMetrics groups by provider name.
func ProviderMetrics(rs types.RecordSet) []types.GroupMetrics {
	return Metrics(rs.Records, Provider)
}

// MinServices keeps groups whose service count reaches min.
func MinServices(groups []types.GroupMetrics, min int) []types.GroupMetrics {
	out := make([]types.GroupMetrics, 0, len(groups))
	for _, g := range groups {
		if g.Services >= min {
			out = append(out, g)
		}
	}
	return out
}
