package aggregator

import "network-insights-go/internal/types"

func optional(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func flag(b bool) (float64, bool) {
	if b {
		return 1, true
	}
	return 0, true
}

// Fields of ServiceRecord usable as keys or reduction sources.
var (
	ProtocolID = Field{Name: types.ColProtocolID, Text: func(r types.ServiceRecord) string { return r.ProtocolID }}
	Provider   = Field{Name: types.ColProvider, Text: func(r types.ServiceRecord) string { return r.Provider }}
	City       = Field{Name: types.ColCity, Text: func(r types.ServiceRecord) string { return r.City }}
	State      = Field{Name: types.ColState, Text: func(r types.ServiceRecord) string { return r.State }}
	Segment    = Field{Name: types.ColSegment, Text: func(r types.ServiceRecord) string { return r.Segment }}
	Insurer    = Field{Name: types.ColInsurer, Text: func(r types.ServiceRecord) string { return r.Insurer }}
	Month      = Field{Name: "month", Text: func(r types.ServiceRecord) string { return r.Month() }}

	Arrival = Field{Name: types.ColArrivalMinutes, Number: func(r types.ServiceRecord) (float64, bool) {
		return optional(r.ArrivalMinutes)
	}}
	ItemValue = Field{Name: types.ColItemValueTotal, Number: func(r types.ServiceRecord) (float64, bool) {
		return optional(r.ItemValueTotal)
	}}
	RefundValue = Field{Name: types.ColRefundValue, Number: func(r types.ServiceRecord) (float64, bool) {
		return optional(r.RefundValue)
	}}
	IsRefund = Field{Name: types.ColIsRefund, Number: func(r types.ServiceRecord) (float64, bool) {
		return flag(r.IsRefund)
	}}
	IsIntermediate = Field{Name: types.ColIsIntermediate, Number: func(r types.ServiceRecord) (float64, bool) {
		return flag(r.IsIntermediate)
	}}
	NPSRaw = Field{Name: types.ColNPSRaw, Number: func(r types.ServiceRecord) (float64, bool) {
		return optional(r.NPSRaw)
	}}
)
