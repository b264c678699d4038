package actionable

import (
	"network-insights-go/internal/classify"
	"network-insights-go/internal/types"
)

// Batch percentiles used by the rule sets.
const (
	CityHighPercentile     = 0.80
	OffenderHighPercentile = 0.75
	OffenderLowPercentile  = 0.25
)

// City suggestion messages.
const (
	MsgCityRecruit        = "Urgent provider recruitment. Analyze local competition."
	MsgCityNoProviders    = "No active providers. Focus on local partnerships."
	MsgCityRefund         = "High refund rate. Investigate dissatisfaction or provider shortage."
	MsgCityIntermediation = "High intermediation rate. Optimize dispatch or recruit direct providers."
	MsgCityArrival        = "Slow arrival. Optimize routes or increase nearby provider density."
)

// Provider suggestion messages.
const (
	MsgProviderAttention      = "Review overall performance. Consider training or contract review."
	MsgProviderRegular        = "Optimize processes for continuous improvement."
	MsgProviderLowNPS         = "Low NPS. Investigate customer dissatisfaction."
	MsgProviderRefund         = "High refund rate. Review processes or pricing."
	MsgProviderIntermediation = "High intermediation rate. Increase capacity or efficiency."
	MsgProviderArrival        = "Slow arrival. Optimize logistics or relocate the provider."
)

func cityRefund(c types.CityScore) (float64, bool)         { return c.RefundPct, true }
func cityIntermediation(c types.CityScore) (float64, bool) { return c.IntermediationPct, true }
func cityArrival(c types.CityScore) (float64, bool)        { return c.MeanArrival, true }

func provRefund(p types.ProviderScore) (float64, bool)         { return p.RefundPct, true }
func provIntermediation(p types.ProviderScore) (float64, bool) { return p.IntermediationPct, true }
func provArrival(p types.ProviderScore) (float64, bool)        { return p.Arrival, true }
func provNPS(p types.ProviderScore) (float64, bool) {
	if p.NPS == nil {
		return 0, false
	}
	return *p.NPS, true
}

// CityRules returns the suggestion rules for scored cities. Percentile rules
// only apply to cities with at least minServices services.
func CityRules(minServices int) []Rule[types.CityScore] {
	enough := func(c types.CityScore) bool { return c.Services >= minServices }
	gated := func(f func(types.CityScore, *Batch[types.CityScore]) bool) func(types.CityScore, *Batch[types.CityScore]) bool {
		return func(c types.CityScore, b *Batch[types.CityScore]) bool { return enough(c) && f(c, b) }
	}
	return []Rule[types.CityScore]{
		{
			Name:    "worst_coverage",
			Message: MsgCityRecruit,
			When: func(c types.CityScore, _ *Batch[types.CityScore]) bool {
				return c.Score.Status == classify.Capillarity.Worst()
			},
		},
		{
			Name:    "no_providers",
			Message: MsgCityNoProviders,
			When: func(c types.CityScore, _ *Batch[types.CityScore]) bool {
				return c.Providers == 0 && c.Services > 0
			},
		},
		{Name: "high_refund", Message: MsgCityRefund, When: gated(Above("refund_pct", CityHighPercentile, cityRefund))},
		{Name: "high_intermediation", Message: MsgCityIntermediation, When: gated(Above("intermediation_pct", CityHighPercentile, cityIntermediation))},
		{Name: "slow_arrival", Message: MsgCityArrival, When: gated(Above("arrival", CityHighPercentile, cityArrival))},
	}
}

// CityEngine builds the city suggestion engine.
func CityEngine(minServices int) Engine[types.CityScore] {
	return Engine[types.CityScore]{
		Rules: CityRules(minServices),
		Key:   func(c types.CityScore) string { return c.Key },
	}
}

// CityOffenders flags cities in the worst status or above the batch p75 on any
// cost metric.
var CityOffenders = Engine[types.CityScore]{
	Key: func(c types.CityScore) string { return c.Key },
	Rules: []Rule[types.CityScore]{
		{Name: "worst_coverage", When: func(c types.CityScore, _ *Batch[types.CityScore]) bool {
			return c.Score.Status == classify.Capillarity.Worst()
		}},
		{Name: "high_refund", When: Above("refund_pct", OffenderHighPercentile, cityRefund)},
		{Name: "high_intermediation", When: Above("intermediation_pct", OffenderHighPercentile, cityIntermediation)},
		{Name: "slow_arrival", When: Above("arrival", OffenderHighPercentile, cityArrival)},
	},
}

func statusIs(label string) func(types.ProviderScore, *Batch[types.ProviderScore]) bool {
	return func(p types.ProviderScore, _ *Batch[types.ProviderScore]) bool {
		return p.Score.Status == label
	}
}

// ProviderRules returns the suggestion rules for scored providers.
func ProviderRules() []Rule[types.ProviderScore] {
	labels := classify.ProviderQuartiles.Labels
	return []Rule[types.ProviderScore]{
		{Name: "needs_attention", Message: MsgProviderAttention, When: statusIs(labels[0])},
		{Name: "regular", Message: MsgProviderRegular, When: statusIs(labels[1])},
		{Name: "low_nps", Message: MsgProviderLowNPS, When: Below("nps", OffenderLowPercentile, provNPS)},
		{Name: "high_refund", Message: MsgProviderRefund, When: Above("refund_pct", OffenderHighPercentile, provRefund)},
		{Name: "high_intermediation", Message: MsgProviderIntermediation, When: Above("intermediation_pct", OffenderHighPercentile, provIntermediation)},
		{Name: "slow_arrival", Message: MsgProviderArrival, When: Above("arrival", OffenderHighPercentile, provArrival)},
	}
}

// ProviderEngine builds the provider suggestion engine.
func ProviderEngine() Engine[types.ProviderScore] {
	return Engine[types.ProviderScore]{
		Rules: ProviderRules(),
		Key:   func(p types.ProviderScore) string { return p.Key },
	}
}

// ProviderOffenders flags providers needing attention, with NPS below the batch
// p25 or a cost metric above p75.
var ProviderOffenders = Engine[types.ProviderScore]{
	Key: func(p types.ProviderScore) string { return p.Key },
	Rules: []Rule[types.ProviderScore]{
		{Name: "needs_attention", When: statusIs(classify.ProviderQuartiles.Worst())},
		{Name: "low_nps", When: Below("nps", OffenderLowPercentile, provNPS)},
		{Name: "high_refund", When: Above("refund_pct", OffenderHighPercentile, provRefund)},
		{Name: "high_intermediation", When: Above("intermediation_pct", OffenderHighPercentile, provIntermediation)},
		{Name: "slow_arrival", When: Above("arrival", OffenderHighPercentile, provArrival)},
	},
}
