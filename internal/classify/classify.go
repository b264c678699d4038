// Package classify buckets composite scores into ordered status labels using
// empirical quantiles of the batch.
package classify

import (
	"math"
	"sort"
)

// Epsilon pads the outer boundaries so the batch min and max fall inside a bin.
const Epsilon = 0.001

// Scale is an ordered label set, worst first, with the quantile cut points
// used to split a batch and the label given when no split is possible.
type Scale struct {
	Labels []string  `json:"labels"`
	Middle string    `json:"middle"`
	Cuts   []float64 `json:"cuts"`
}

// Capillarity labels cities by coverage; split at Q1 and Q3.
var Capillarity = Scale{
	Labels: []string{"Coverage Gap", "Regular Coverage", "Good Coverage"},
	Middle: "Regular Coverage",
	Cuts:   []float64{0.25, 0.75},
}

// ProviderQuartiles labels providers by score quartile.
var ProviderQuartiles = Scale{
	Labels: []string{"Needs Attention", "Regular", "Good", "Excellent"},
	Middle: "Regular",
	Cuts:   []float64{0.25, 0.5, 0.75},
}

// Worst returns the lowest label.
func (s Scale) Worst() string { return s.Labels[0] }

// Best returns the highest label.
func (s Scale) Best() string { return s.Labels[len(s.Labels)-1] }

// LabelsFor picks the label set whose arity matches the number of bins:
// two bins take the extremes, three add the middle label, and the full set is
// used when it matches exactly. Nil means no label set fits.
func (s Scale) LabelsFor(bins int) []string {
	switch {
	case bins == len(s.Labels):
		return s.Labels
	case bins == 2:
		return []string{s.Worst(), s.Best()}
	case bins == 3:
		return []string{s.Worst(), s.Middle, s.Best()}
	}
	return nil
}

// Quantile returns the q-th quantile with linear interpolation between the
// closest ranks. NaN for an empty input.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Distinct counts distinct values.
func Distinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// Boundaries returns the deduplicated, ascending bin edges
// [min-ε, cuts..., max+ε] and the labels matching the bin count. Both are nil
// when the batch has fewer than two distinct values.
func Boundaries(values []float64, s Scale) ([]float64, []string) {
	if Distinct(values) < 2 {
		return nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	edges := []float64{sorted[0] - Epsilon}
	for _, c := range s.Cuts {
		edges = append(edges, quantileSorted(sorted, c))
	}
	edges = append(edges, sorted[len(sorted)-1]+Epsilon)
	sort.Float64s(edges)

	uniq := edges[:1]
	for _, e := range edges[1:] {
		if e != uniq[len(uniq)-1] {
			uniq = append(uniq, e)
		}
	}
	return uniq, s.LabelsFor(len(uniq) - 1)
}

// Classify labels every value of the batch. Bins are right-closed. A batch
// with fewer than two distinct values, or any value that resolves to no bin,
// gets the scale's middle label.
func Classify(values []float64, s Scale) []string {
	out := make([]string, len(values))
	edges, labels := Boundaries(values, s)
	for i, v := range values {
		out[i] = s.Middle
		if labels == nil {
			continue
		}
		for b := 0; b+1 < len(edges); b++ {
			if v > edges[b] && v <= edges[b+1] {
				out[i] = labels[b]
				break
			}
		}
	}
	return out
}
