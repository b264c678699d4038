// Package finance computes cost views over service records: spend totals,
// mean cost per service (CMS) by provider and arrival band, and providers
// whose CMS runs above their regional segment reference.
package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"network-insights-go/internal/types"
)

// Totals summarizes spend over a record set.
type Totals struct {
	Services          int             `json:"services"`
	Spend             decimal.Decimal `json:"spend"`
	MeanCMS           decimal.Decimal `json:"mean_cms"`
	RefundTotal       decimal.Decimal `json:"refund_total"`
	RefundShare       float64         `json:"refund_share_pct"`
	IntermediationPct float64         `json:"intermediation_pct"`
}

// CMSRow is the mean cost per service of one group.
type CMSRow struct {
	Key      string          `json:"key"`
	Services int             `json:"services"`
	Spend    decimal.Decimal `json:"spend"`
	CMS      decimal.Decimal `json:"cms"`
}

type tally struct {
	n     int
	spend decimal.Decimal
}

func (t tally) cms() decimal.Decimal {
	if t.n == 0 {
		return decimal.Zero
	}
	return t.spend.Div(decimal.NewFromInt(int64(t.n)))
}

func value(r types.ServiceRecord) (decimal.Decimal, bool) {
	if r.ItemValueTotal == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*r.ItemValueTotal), true
}

// Summarize totals spend and refunds. Refund share is 0 when nothing was spent.
func Summarize(rs types.RecordSet) Totals {
	t := Totals{Spend: decimal.Zero, MeanCMS: decimal.Zero, RefundTotal: decimal.Zero}
	protocols := map[string]struct{}{}
	var priced, intermediated int
	for _, r := range rs.Records {
		protocols[r.ProtocolID] = struct{}{}
		if v, ok := value(r); ok {
			t.Spend = t.Spend.Add(v)
			priced++
		}
		if r.RefundValue != nil {
			t.RefundTotal = t.RefundTotal.Add(decimal.NewFromFloat(*r.RefundValue))
		}
		if r.IsIntermediate {
			intermediated++
		}
	}
	t.Services = len(protocols)
	if priced > 0 {
		t.MeanCMS = t.Spend.Div(decimal.NewFromInt(int64(priced))).Round(2)
	}
	if t.Spend.IsPositive() {
		t.RefundShare = t.RefundTotal.Div(t.Spend).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	t.IntermediationPct = types.Percent(intermediated, rs.Len())
	return t
}

// ByProvider returns CMS per provider for providers with at least min priced
// services, highest CMS first.
func ByProvider(rs types.RecordSet, min int) []CMSRow {
	groups := map[string]tally{}
	for _, r := range rs.Records {
		v, ok := value(r)
		if !ok {
			continue
		}
		g := groups[r.Provider]
		g.n++
		g.spend = g.spend.Add(v)
		groups[r.Provider] = g
	}
	out := make([]CMSRow, 0, len(groups))
	for k, g := range groups {
		if g.n < min {
			continue
		}
		out = append(out, CMSRow{Key: k, Services: g.n, Spend: g.spend, CMS: g.cms().Round(2)})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CMS.Equal(out[j].CMS) {
			return out[i].CMS.GreaterThan(out[j].CMS)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Arrival bands, right-closed; 0 belongs to the first band.
var Bands = []struct {
	Label string
	Upper float64
}{
	{"0-30", 30},
	{"31-60", 60},
	{"61-120", 120},
	{">120", 0},
}

// Band returns the label of the arrival band holding minutes.
func Band(minutes float64) string {
	for _, b := range Bands[:len(Bands)-1] {
		if minutes <= b.Upper {
			return b.Label
		}
	}
	return Bands[len(Bands)-1].Label
}

// ByArrivalBand returns CMS per arrival band in band order. Records without an
// arrival time or a value are left out; empty bands are omitted.
func ByArrivalBand(rs types.RecordSet) []CMSRow {
	groups := map[string]tally{}
	for _, r := range rs.Records {
		v, ok := value(r)
		if !ok || r.ArrivalMinutes == nil {
			continue
		}
		label := Band(*r.ArrivalMinutes)
		g := groups[label]
		g.n++
		g.spend = g.spend.Add(v)
		groups[label] = g
	}
	out := make([]CMSRow, 0, len(Bands))
	for _, b := range Bands {
		g, ok := groups[b.Label]
		if !ok {
			continue
		}
		out = append(out, CMSRow{Key: b.Label, Services: g.n, Spend: g.spend, CMS: g.cms().Round(2)})
	}
	return out
}
