package pipeline

import (
	"math"

	"github.com/sirupsen/logrus"

	"network-insights-go/internal/actionable"
	"network-insights-go/internal/aggregator"
	"network-insights-go/internal/classify"
	"network-insights-go/internal/composite"
	"network-insights-go/internal/normalize"
	"network-insights-go/internal/nps"
	"network-insights-go/internal/types"
)

// NPSShift moves NPS from [-100,100] onto a non-negative scale before
// normalization.
const NPSShift = 100.0

// ProviderResult is the scored provider table plus the views derived from it.
type ProviderResult struct {
	MinServices  int                   `json:"min_services"`
	Providers    []types.ProviderScore `json:"providers"`
	Offenders    []types.ProviderScore `json:"offenders"`
	Distribution map[string]int        `json:"status_distribution"`
}

// ProviderScoreEngine scores providers by performance.
type ProviderScoreEngine struct {
	MinServices int
	Log         *logrus.Entry
}

// NewProviderScoreEngine returns an engine with the given inclusion threshold.
func NewProviderScoreEngine(minServices int, log *logrus.Entry) ProviderScoreEngine {
	return ProviderScoreEngine{MinServices: minServices, Log: log}
}

// Run scores every provider with at least MinServices services. counts are
// optional pre-aggregated survey answers keyed by provider; a provider with
// counts uses them, any other falls back to the raw answers on its records.
// Scores are rescaled to [0,100] and providers are ordered by score descending.
func (e ProviderScoreEngine) Run(rs types.RecordSet, counts []types.NPSCounts) (ProviderResult, error) {
	log := orDiscard(e.Log).WithField("component", "provider-score")
	res := ProviderResult{
		MinServices:  e.MinServices,
		Providers:    []types.ProviderScore{},
		Offenders:    []types.ProviderScore{},
		Distribution: map[string]int{},
	}
	if err := rs.Validate(); err != nil {
		return res, err
	}

	groups := aggregator.MinServices(aggregator.ProviderMetrics(rs), e.MinServices)
	surveyed := nps.ForGroups(counts)
	answered := nps.ForGroups(nps.FromResponses(rs.Records, func(r types.ServiceRecord) string { return r.Provider }))
	log.WithFields(logrus.Fields{
		"records":   rs.Len(),
		"providers": len(groups),
		"surveyed":  len(surveyed),
	}).Debug("aggregated providers")

	rows := make([]types.ProviderScore, len(groups))
	for i, g := range groups {
		rows[i] = types.ProviderScore{
			GroupMetrics:      g,
			Provider:          g.Key,
			RefundPct:         g.RefundPct(),
			IntermediationPct: g.IntermediationPct(),
		}
		p, ok := surveyed[g.Key]
		if !ok {
			p, ok = answered[g.Key]
		}
		if ok {
			v := p.NPS
			rows[i].NPS = &v
			rows[i].NPSRespondents = p.Respondents
		}
	}
	fillArrival(rows)

	if err := scoreProviders(rows); err != nil {
		return res, err
	}

	engine := actionable.ProviderEngine()
	batch := actionable.NewBatch(rows)
	var offenders []types.ProviderScore
	for i := range rows {
		rows[i].Suggestion = engine.Suggest(rows[i], batch)
		res.Distribution[rows[i].Score.Status]++
		if actionable.ProviderOffenders.Any(rows[i], batch) {
			offenders = append(offenders, rows[i])
		}
	}

	res.Providers = orderProviders(rows, true)
	res.Offenders = orderProviders(offenders, false)
	log.WithFields(logrus.Fields{"scored": len(rows), "offenders": len(offenders)}).Debug("provider score done")
	return res, nil
}

// fillArrival gives providers without arrival data the batch mean of the
// providers that have it, or 0 when none do.
func fillArrival(rows []types.ProviderScore) {
	var sum float64
	var n int
	for _, r := range rows {
		if r.HasArrival {
			sum += r.MeanArrival
			n++
		}
	}
	fill := 0.0
	if n > 0 {
		fill = sum / float64(n)
	}
	for i := range rows {
		rows[i].Arrival = fill
		if rows[i].HasArrival {
			rows[i].Arrival = rows[i].MeanArrival
		}
	}
}

func shiftedNPS(p *float64) float64 {
	if p == nil {
		return 0
	}
	return math.Max(*p+NPSShift, 0)
}

func scoreProviders(rows []types.ProviderScore) error {
	n := len(rows)
	services := make([]float64, n)
	score := make([]float64, n)
	refund := make([]float64, n)
	inter := make([]float64, n)
	arrival := make([]float64, n)
	for i, r := range rows {
		services[i] = float64(r.Services)
		score[i] = shiftedNPS(r.NPS)
		refund[i] = r.RefundPct
		inter[i] = r.IntermediationPct
		arrival[i] = r.Arrival
	}

	columns := map[string][]float64{
		composite.Volume:                     normalize.Normalize(services),
		composite.NPSNormalized:              normalize.Normalize(score),
		composite.ArrivalContribution:        normalize.Contribution(arrival),
		composite.RefundContribution:         normalize.Contribution(refund),
		composite.IntermediationContribution: normalize.Contribution(inter),
	}
	raw, err := composite.Compute(composite.ProviderScore, n, columns)
	if err != nil {
		return err
	}
	scaled := composite.Rescale(raw)
	status := classify.Classify(scaled, classify.ProviderQuartiles)
	for i := range rows {
		rows[i].RawComposite = raw[i]
		rows[i].Score = types.CompositeScore{
			Key:        rows[i].Key,
			Components: componentsAt(columns, i),
			Composite:  scaled[i],
			Status:     status[i],
		}
	}
	return nil
}

func orderProviders(rows []types.ProviderScore, desc bool) []types.ProviderScore {
	idx := ranked(len(rows),
		func(i int) float64 { return rows[i].Score.Composite },
		func(i int) string { return rows[i].Key }, desc)
	out := make([]types.ProviderScore, 0, len(rows))
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return out
}
