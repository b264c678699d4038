// internal/types/kpi_models.go
package types

// --------------------------------------------
// Per-group metrics (derived, never persisted)
// --------------------------------------------
type GroupMetrics struct {
	Key             string   `json:"key"`
	KeyParts        []string `json:"key_parts"`
	Services        int      `json:"services"`
	Providers       int      `json:"providers"`
	Refunds         int      `json:"refunds"`
	Intermediations int      `json:"intermediations"`
	MeanArrival     float64  `json:"mean_arrival_minutes"`
	HasArrival      bool     `json:"has_arrival"`
	TotalValue      float64  `json:"total_value"`
}

// RefundPct is refunds/services*100, or 0 when there are no services.
func (g GroupMetrics) RefundPct() float64 {
	return Percent(g.Refunds, g.Services)
}

// IntermediationPct is intermediations/services*100, or 0 when there are no services.
func (g GroupMetrics) IntermediationPct() float64 {
	return Percent(g.Intermediations, g.Services)
}

// Unserved counts services that were neither refunded nor intermediated.
func (g GroupMetrics) Unserved() int {
	n := g.Services - g.Refunds - g.Intermediations
	if n < 0 {
		return 0
	}
	return n
}

// Percent is part/total*100 with the zero-total policy used by every rate
// metric except NPS.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// --------------------------------------------
// Composite score block
// --------------------------------------------
type CompositeScore struct {
	Key        string             `json:"key"`
	Components map[string]float64 `json:"components"`
	Composite  float64            `json:"composite"`
	Status     string             `json:"status"`
}

// --------------------------------------------
// Suggestions
// --------------------------------------------
type SuggestionSet struct {
	Key         string   `json:"key"`
	Suggestions []string `json:"suggestions,omitempty"`
	Text        string   `json:"text"`
}

// NoAction reports whether no rule fired for the group.
func (s SuggestionSet) NoAction() bool { return len(s.Suggestions) == 0 }

// --------------------------------------------
// Network-wide summary
// --------------------------------------------
type NetworkSummary struct {
	TotalServices     int      `json:"total_services"`
	UniqueProviders   int      `json:"unique_providers"`
	CitiesServed      int      `json:"cities_served"`
	MeanArrival       *float64 `json:"mean_arrival_minutes"`
	RefundPct         float64  `json:"refund_pct"`
	IntermediationPct float64  `json:"intermediation_pct"`
}

// --------------------------------------------
// Scored city row (capillarity index)
// --------------------------------------------
type CityScore struct {
	GroupMetrics
	State             string         `json:"state"`
	City              string         `json:"city"`
	RefundPct         float64        `json:"refund_pct"`
	IntermediationPct float64        `json:"intermediation_pct"`
	UnservedServices  int            `json:"unserved_services"`
	Score             CompositeScore `json:"score"`
	Suggestion        SuggestionSet  `json:"suggestion"`
}

// --------------------------------------------
// Scored provider row (provider performance score)
// --------------------------------------------
type ProviderScore struct {
	GroupMetrics
	Provider          string         `json:"provider"`
	RefundPct         float64        `json:"refund_pct"`
	IntermediationPct float64        `json:"intermediation_pct"`
	Arrival           float64        `json:"arrival_minutes"`
	NPS               *float64       `json:"nps"`
	NPSRespondents    int            `json:"nps_respondents"`
	RawComposite      float64        `json:"raw_composite"`
	Score             CompositeScore `json:"score"`
	Suggestion        SuggestionSet  `json:"suggestion"`
}
