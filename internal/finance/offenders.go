package finance

import (
	"sort"

	"github.com/shopspring/decimal"

	"network-insights-go/internal/types"
)

// OffenderSegments are the segments screened for CMS offenders.
var OffenderSegments = []string{"AUTO", "RESID", "VIDA"}

// ExcludedProviders are never flagged; they are placeholders or fleet
// partners billed under separate contracts.
var ExcludedProviders = []string{"VAZIO", "MOVIDA", "LOCALIZA RENT A CAR"}

// Tolerance is how far above the reference a provider CMS may run.
var Tolerance = decimal.NewFromFloat(1.10)

// Offender is the CMS of one (provider, state, segment) group against the
// mean CMS of its (state, segment).
type Offender struct {
	Provider  string          `json:"provider"`
	State     string          `json:"state"`
	Segment   string          `json:"segment"`
	Services  int             `json:"services"`
	CMS       decimal.Decimal `json:"cms"`
	Reference decimal.Decimal `json:"reference_cms"`
	Offender  bool            `json:"offender"`
	Savings   decimal.Decimal `json:"savings_potential"`
}

// OffenderReport lists every screened group, largest savings first.
type OffenderReport struct {
	Rows         []Offender      `json:"rows"`
	Offenders    int             `json:"offenders"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Offenders flags groups whose CMS exceeds Tolerance times the reference.
// Savings is (cms - reference) * services for offenders and 0 otherwise.
func Offenders(rs types.RecordSet) OffenderReport {
	type gkey struct{ provider, state, segment string }
	type rkey struct{ state, segment string }
	groups := map[gkey]tally{}
	refs := map[rkey]tally{}
	for _, r := range rs.Records {
		if !contains(OffenderSegments, r.Segment) || contains(ExcludedProviders, r.Provider) {
			continue
		}
		v, ok := value(r)
		if !ok {
			continue
		}
		gk := gkey{r.Provider, r.State, r.Segment}
		g := groups[gk]
		g.n++
		g.spend = g.spend.Add(v)
		groups[gk] = g

		rk := rkey{r.State, r.Segment}
		ref := refs[rk]
		ref.n++
		ref.spend = ref.spend.Add(v)
		refs[rk] = ref
	}

	rep := OffenderReport{Rows: make([]Offender, 0, len(groups)), TotalSavings: decimal.Zero}
	for k, g := range groups {
		cms := g.cms()
		ref := refs[rkey{k.state, k.segment}].cms()
		o := Offender{
			Provider:  k.provider,
			State:     k.state,
			Segment:   k.segment,
			Services:  g.n,
			CMS:       cms.Round(2),
			Reference: ref.Round(2),
			Savings:   decimal.Zero,
		}
		if cms.GreaterThan(ref.Mul(Tolerance)) {
			o.Offender = true
			o.Savings = cms.Sub(ref).Mul(decimal.NewFromInt(int64(g.n))).Round(2)
			rep.Offenders++
			rep.TotalSavings = rep.TotalSavings.Add(o.Savings)
		}
		rep.Rows = append(rep.Rows, o)
	}
	sort.Slice(rep.Rows, func(i, j int) bool {
		a, b := rep.Rows[i], rep.Rows[j]
		if !a.Savings.Equal(b.Savings) {
			return a.Savings.GreaterThan(b.Savings)
		}
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.State != b.State {
			return a.State < b.State
		}
		return a.Segment < b.Segment
	})
	return rep
}
