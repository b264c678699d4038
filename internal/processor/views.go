package processor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"network-insights-go/internal/dataset"
	"network-insights-go/internal/filter"
	"network-insights-go/internal/finance"
	"network-insights-go/internal/nps"
	"network-insights-go/internal/pipeline"
	"network-insights-go/internal/quality"
	"network-insights-go/internal/types"
)

// Meta echoes the request scope on every result.
type Meta struct {
	Criteria   filter.Criteria `json:"criteria"`
	Records    int             `json:"records"`
	DurationMs int64           `json:"duration_ms"`
}

type SummaryResult struct {
	Meta
	Summary types.NetworkSummary `json:"summary"`
	Filters filter.Options       `json:"filters"`
}

type CapillarityResult struct {
	Meta
	pipeline.CapillarityResult
}

type ProviderResult struct {
	Meta
	pipeline.ProviderResult
}

type NPSResult struct {
	Meta
	Monthly []nps.Point `json:"monthly"`
	ByGroup []nps.Point `json:"by_group"`
	Network *nps.Point  `json:"network,omitempty"`
	FromRaw bool        `json:"from_raw_answers"`
}

type FinanceResult struct {
	Meta
	Totals    finance.Totals         `json:"totals"`
	Providers []finance.CMSRow       `json:"cms_by_provider"`
	Bands     []finance.CMSRow       `json:"cms_by_arrival_band"`
	Offenders finance.OffenderReport `json:"cms_offenders"`
}

type QualityResult struct {
	Meta
	quality.Report
}

func (s *Service) meta(c filter.Criteria, v view, start time.Time, what string) Meta {
	m := Meta{Criteria: c, Records: v.records.Len(), DurationMs: time.Since(start).Milliseconds()}
	s.log.WithFields(logrus.Fields{"view": what, "records": m.Records, "duration_ms": m.DurationMs}).Info("view computed")
	return m
}

// Summary returns the network KPIs and the available filter values.
func (s *Service) Summary(ctx context.Context, c filter.Criteria) (SummaryResult, error) {
	start := time.Now()
	v, err := s.view(ctx, c)
	if err != nil {
		return SummaryResult{}, err
	}
	return SummaryResult{
		Summary: dataset.Summarize(v.records),
		Filters: filter.Available(v.records),
		Meta:    s.meta(c, v, start, "summary"),
	}, nil
}

func orDefault(min *int, def int) int {
	if min == nil {
		return def
	}
	return *min
}

// Capillarity scores cities. min overrides the configured minimum count.
func (s *Service) Capillarity(ctx context.Context, c filter.Criteria, min *int) (CapillarityResult, error) {
	start := time.Now()
	v, err := s.view(ctx, c)
	if err != nil {
		return CapillarityResult{}, err
	}
	e := pipeline.NewCapillarityEngine(orDefault(min, s.opts.MinCityServices), s.log)
	res, err := e.Run(v.records)
	if err != nil {
		return CapillarityResult{}, err
	}
	return CapillarityResult{Meta: s.meta(c, v, start, "capillarity"), CapillarityResult: res}, nil
}

// Providers scores providers. min overrides the configured minimum count.
func (s *Service) Providers(ctx context.Context, c filter.Criteria, min *int) (ProviderResult, error) {
	start := time.Now()
	v, err := s.view(ctx, c)
	if err != nil {
		return ProviderResult{}, err
	}
	e := pipeline.NewProviderScoreEngine(orDefault(min, s.opts.MinProviderServices), s.log)
	res, err := e.Run(v.records, v.counts)
	if err != nil {
		return ProviderResult{}, err
	}
	return ProviderResult{Meta: s.meta(c, v, start, "providers"), ProviderResult: res}, nil
}

// NPS returns the monthly series and per-provider NPS. Survey counts are used
// when loaded, otherwise the raw answers on the records.
func (s *Service) NPS(ctx context.Context, c filter.Criteria) (NPSResult, error) {
	start := time.Now()
	v, err := s.view(ctx, c)
	if err != nil {
		return NPSResult{}, err
	}
	counts := v.counts
	res := NPSResult{}
	if len(counts) == 0 {
		counts = nps.FromResponses(v.records.Records, func(r types.ServiceRecord) string { return r.Provider })
		res.FromRaw = true
	}
	res.Monthly = nps.Monthly(counts)
	res.ByGroup = nps.ByGroup(counts)
	var total types.NPSCounts
	for _, n := range counts {
		total = total.Add(n)
	}
	if score, ok := nps.Score(total); ok {
		res.Network = &nps.Point{Respondents: total.Total(), NPS: score}
	}
	res.Meta = s.meta(c, v, start, "nps")
	return res, nil
}

// Finance returns spend totals and CMS views.
func (s *Service) Finance(ctx context.Context, c filter.Criteria, min *int) (FinanceResult, error) {
	start := time.Now()
	v, err := s.view(ctx, c)
	if err != nil {
		return FinanceResult{}, err
	}
	if err := v.records.Validate(); err != nil {
		return FinanceResult{}, err
	}
	return FinanceResult{
		Totals:    finance.Summarize(v.records),
		Providers: finance.ByProvider(v.records, orDefault(min, s.opts.MinProviderServices)),
		Bands:     finance.ByArrivalBand(v.records),
		Offenders: finance.Offenders(v.records),
		Meta:      s.meta(c, v, start, "finance"),
	}, nil
}

// Quality returns the NPS rankings and arrival views.
func (s *Service) Quality(ctx context.Context, c filter.Criteria, min *int) (QualityResult, error) {
	start := time.Now()
	v, err := s.view(ctx, c)
	if err != nil {
		return QualityResult{}, err
	}
	if err := v.records.Validate(); err != nil {
		return QualityResult{}, err
	}
	rep := quality.Build(v.records, v.counts, orDefault(min, s.opts.MinEvaluations))
	return QualityResult{Meta: s.meta(c, v, start, "quality"), Report: rep}, nil
}
