package pipeline

import (
	"github.com/sirupsen/logrus"

	"network-insights-go/internal/actionable"
	"network-insights-go/internal/aggregator"
	"network-insights-go/internal/classify"
	"network-insights-go/internal/composite"
	"network-insights-go/internal/normalize"
	"network-insights-go/internal/types"
)

// CapillarityResult is the scored city table plus the views derived from it.
type CapillarityResult struct {
	MinServices       int                   `json:"min_services"`
	Cities            []types.CityScore     `json:"cities"`
	Offenders         []types.CityScore     `json:"offenders"`
	TopRefund         []types.CityScore     `json:"top_refund"`
	TopIntermediation []types.CityScore     `json:"top_intermediation"`
	Card              actionable.ActionCard `json:"card"`
	Distribution      map[string]int        `json:"status_distribution"`
}

// CapillarityEngine scores cities by coverage.
type CapillarityEngine struct {
	MinServices int
	Log         *logrus.Entry
}

// NewCapillarityEngine returns an engine with the given inclusion threshold.
func NewCapillarityEngine(minServices int, log *logrus.Entry) CapillarityEngine {
	return CapillarityEngine{MinServices: minServices, Log: log}
}

// Run groups the records by (state, city), drops cities below the minimum
// service count and scores the rest. Cities are ordered by index descending.
// A missing required column fails before anything is computed.
func (e CapillarityEngine) Run(rs types.RecordSet) (CapillarityResult, error) {
	log := orDiscard(e.Log).WithField("component", "capillarity")
	res := CapillarityResult{
		MinServices:       e.MinServices,
		Cities:            []types.CityScore{},
		Offenders:         []types.CityScore{},
		TopRefund:         []types.CityScore{},
		TopIntermediation: []types.CityScore{},
		Distribution:      map[string]int{},
	}
	if err := rs.Validate(); err != nil {
		return res, err
	}

	groups := aggregator.MinServices(aggregator.CityMetrics(rs), e.MinServices)
	log.WithFields(logrus.Fields{"records": rs.Len(), "cities": len(groups)}).Debug("aggregated cities")

	rows, err := scoreCities(groups)
	if err != nil {
		return res, err
	}

	engine := actionable.CityEngine(e.MinServices)
	batch := actionable.NewBatch(rows)
	for i := range rows {
		rows[i].Suggestion = engine.Suggest(rows[i], batch)
		res.Distribution[rows[i].Score.Status]++
	}

	var offenders []types.CityScore
	for _, r := range rows {
		if actionable.CityOffenders.Any(r, batch) {
			offenders = append(offenders, r)
		}
	}

	res.Cities = orderCities(rows, func(c types.CityScore) float64 { return c.Score.Composite }, true)
	res.Offenders = orderCities(offenders, func(c types.CityScore) float64 { return c.Score.Composite }, false)
	res.TopRefund = head(orderCities(rows, func(c types.CityScore) float64 { return c.RefundPct }, true), TopN)
	res.TopIntermediation = head(orderCities(rows, func(c types.CityScore) float64 { return c.IntermediationPct }, true), TopN)
	res.Card = actionable.Generate(rows)

	log.WithFields(logrus.Fields{"scored": len(rows), "offenders": len(offenders)}).Debug("capillarity done")
	return res, nil
}

func scoreCities(groups []types.GroupMetrics) ([]types.CityScore, error) {
	n := len(groups)
	services := make([]float64, n)
	providers := make([]float64, n)
	refund := make([]float64, n)
	inter := make([]float64, n)
	arrival := make([]float64, n)
	rows := make([]types.CityScore, n)
	for i, g := range groups {
		rows[i] = types.CityScore{
			GroupMetrics:      g,
			RefundPct:         g.RefundPct(),
			IntermediationPct: g.IntermediationPct(),
			UnservedServices:  g.Unserved(),
		}
		if len(g.KeyParts) == 2 {
			rows[i].State, rows[i].City = g.KeyParts[0], g.KeyParts[1]
		}
		services[i] = float64(g.Services)
		providers[i] = float64(g.Providers)
		refund[i] = rows[i].RefundPct
		inter[i] = rows[i].IntermediationPct
		arrival[i] = g.MeanArrival
	}

	columns := map[string][]float64{
		composite.Volume:                     normalize.Normalize(services),
		composite.ProviderCount:              normalize.Normalize(providers),
		composite.RefundContribution:         normalize.Contribution(refund),
		composite.IntermediationContribution: normalize.Contribution(inter),
		composite.ArrivalContribution:        normalize.Contribution(arrival),
	}
	scores, err := composite.Compute(composite.Capillarity, n, columns)
	if err != nil {
		return nil, err
	}
	status := classify.Classify(scores, classify.Capillarity)
	for i := range rows {
		rows[i].Score = types.CompositeScore{
			Key:        rows[i].Key,
			Components: componentsAt(columns, i),
			Composite:  scores[i],
			Status:     status[i],
		}
	}
	return rows, nil
}

func componentsAt(columns map[string][]float64, i int) map[string]float64 {
	out := make(map[string]float64, len(columns))
	for name, col := range columns {
		out[name] = col[i]
	}
	return out
}

func orderCities(rows []types.CityScore, score func(types.CityScore) float64, desc bool) []types.CityScore {
	idx := ranked(len(rows),
		func(i int) float64 { return score(rows[i]) },
		func(i int) string { return rows[i].Key }, desc)
	out := make([]types.CityScore, 0, len(rows))
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return out
}
