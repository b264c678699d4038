// Package normalize scales batch metrics onto [0,1].
package normalize

// Max returns the largest value, or 0 for an empty batch.
func Max(values []float64) float64 {
	var m float64
	for i, v := range values {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// Normalize divides every value by the batch maximum. When the maximum is not
// positive every row is 0.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	m := Max(values)
	if m <= 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / m
	}
	return out
}

// Contribution is the inverse credit for a lower-is-better metric:
// 1 - normalized when the batch maximum is positive, otherwise 1 for every row
// so a metric that never varies does not penalize anyone.
func Contribution(values []float64) []float64 {
	out := make([]float64, len(values))
	m := Max(values)
	if m <= 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range values {
		out[i] = 1 - v/m
	}
	return out
}
