// Package composite combines normalized components into weighted scores.
package composite

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Component names shared by the weight vectors.
const (
	Volume                     = "volume"
	ProviderCount              = "provider_count"
	NPSNormalized              = "nps_normalized"
	RefundContribution         = "refund_contribution"
	IntermediationContribution = "intermediation_contribution"
	ArrivalContribution        = "arrival_contribution"
)

// Weight binds a component to its share of the composite.
type Weight struct {
	Component string  `json:"component"`
	Weight    float64 `json:"weight"`
}

// Weights is an ordered weight vector.
type Weights []Weight

// Capillarity is the city coverage index weight vector.
var Capillarity = Weights{
	{Volume, 0.30},
	{ProviderCount, 0.30},
	{RefundContribution, 0.20},
	{IntermediationContribution, 0.10},
	{ArrivalContribution, 0.10},
}

// ProviderScore is the provider performance weight vector.
var ProviderScore = Weights{
	{Volume, 0.25},
	{NPSNormalized, 0.30},
	{ArrivalContribution, 0.20},
	{RefundContribution, 0.15},
	{IntermediationContribution, 0.10},
}

const weightTolerance = 1e-9

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	var s float64
	for _, x := range w {
		s += x.Weight
	}
	return s
}

// Validate checks that weights are non-negative, unique and sum to 1.
func (w Weights) Validate() error {
	var errs []string
	seen := map[string]bool{}
	for _, x := range w {
		if x.Weight < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", x.Component))
		}
		if seen[x.Component] {
			errs = append(errs, fmt.Sprintf("%s listed twice", x.Component))
		}
		seen[x.Component] = true
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.4f", sum))
	}
	if len(errs) > 0 {
		return eris.Errorf("composite: invalid weights: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Compute returns Σ weight_i × component_i for every row of a batch. Columns
// are keyed by component name and must all have n rows.
func Compute(w Weights, n int, columns map[string][]float64) ([]float64, error) {
	out := make([]float64, n)
	for _, x := range w {
		col, ok := columns[x.Component]
		if !ok {
			return nil, eris.Errorf("composite: missing component %q", x.Component)
		}
		if len(col) != n {
			return nil, eris.Errorf("composite: component %q has %d rows, want %d", x.Component, len(col), n)
		}
		for i, v := range col {
			out[i] += x.Weight * v
		}
	}
	return out, nil
}

// Degenerate is the score given to every row when a batch has no spread.
const Degenerate = 50.0

// Rescale maps values linearly onto [0,100]. When max == min every value
// becomes Degenerate.
func Rescale(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		for i := range out {
			out[i] = Degenerate
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo) * 100
	}
	return out
}
