// internal/processor/processor.go
package processor

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"network-insights-go/internal/cache"
	"network-insights-go/internal/config"
	"network-insights-go/internal/dataset"
	"network-insights-go/internal/filter"
	"network-insights-go/internal/nps"
	"network-insights-go/internal/types"
)

// Source is the raw loaded data. It is the only thing cached between calls.
type Source struct {
	Records  types.RecordSet   `json:"-"`
	Counts   []types.NPSCounts `json:"-"`
	LoadedAt time.Time         `json:"loaded_at"`
}

// Options configure a Service.
type Options struct {
	DatasetPath         string
	NPSPath             string
	FetchTimeout        time.Duration
	CacheTTL            time.Duration
	MinCityServices     int
	MinProviderServices int
	MinEvaluations      int
}

// OptionsFromConfig maps application config onto service options.
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		DatasetPath:         c.Dataset.Path,
		NPSPath:             c.Dataset.NPSPath,
		FetchTimeout:        c.Dataset.FetchTimeout(),
		CacheTTL:            c.Dataset.CacheTTL(),
		MinCityServices:     c.Engine.MinCityServices,
		MinProviderServices: c.Engine.MinProviderServices,
		MinEvaluations:      c.Quality.MinEvaluations,
	}
}

// LoadError marks a failure to obtain source data, as opposed to a schema
// problem in data that was obtained.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string { return "load " + e.Source + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// Service loads source data through the cache, filters it per request and
// runs the engines on the filtered view.
type Service struct {
	opts  Options
	cache *cache.Cache[Source]
	load  func(ctx context.Context) (Source, error)
	log   *logrus.Entry
}

// New returns a Service reading the configured workbooks.
func New(opts Options, log *logrus.Entry) *Service {
	s := &Service{
		opts:  opts,
		cache: cache.New[Source](opts.CacheTTL),
		log:   log.WithField("component", "processor"),
	}
	s.load = s.loadSources
	return s
}

// FromSource returns a Service over already-loaded data.
func FromSource(src Source, opts Options, log *logrus.Entry) *Service {
	s := New(opts, log)
	s.load = func(context.Context) (Source, error) { return src, nil }
	return s
}

// Options returns the service options.
func (s *Service) Options() Options { return s.opts }

// Source returns the loaded data, from cache when fresh. The load is shared by
// concurrent callers, so it runs detached from ctx and is bounded by the fetch
// budget instead.
func (s *Service) Source(ctx context.Context) (Source, error) {
	key := cache.SourceKey(s.opts.DatasetPath, s.opts.NPSPath)
	return s.cache.GetOrLoad(key, func() (Source, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dataset.FetchBudget(s.opts.FetchTimeout))
		defer cancel()
		return s.load(lctx)
	})
}

// Reload drops the cached source so the next call reads it again.
func (s *Service) Reload() {
	s.cache.Invalidate(cache.SourceKey(s.opts.DatasetPath, s.opts.NPSPath))
}

func (s *Service) loadSources(ctx context.Context) (Source, error) {
	start := time.Now()
	var src Source
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := dataset.LoadSource(gctx, s.opts.DatasetPath, s.opts.FetchTimeout)
		if err != nil {
			return wrapLoad(s.opts.DatasetPath, err)
		}
		src.Records = rs
		return nil
	})
	if s.opts.NPSPath != "" {
		g.Go(func() error {
			counts, err := dataset.LoadNPSSource(gctx, s.opts.NPSPath, s.opts.FetchTimeout)
			if err != nil {
				return wrapLoad(s.opts.NPSPath, err)
			}
			src.Counts = counts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.WithError(err).Error("source load failed")
		return Source{}, err
	}
	src.LoadedAt = time.Now()
	s.log.WithFields(logrus.Fields{
		"records":     src.Records.Len(),
		"nps_rows":    len(src.Counts),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("sources loaded")
	return src, nil
}

// wrapLoad keeps schema errors as they are and marks anything else as a load
// failure.
func wrapLoad(source string, err error) error {
	var mc *types.MissingColumnError
	if errors.As(err, &mc) {
		return err
	}
	return &LoadError{Source: source, Err: eris.Wrap(err, "dataset")}
}

// view is the filtered snapshot one request works on.
type view struct {
	records types.RecordSet
	counts  []types.NPSCounts
}

func (s *Service) view(ctx context.Context, c filter.Criteria) (view, error) {
	src, err := s.Source(ctx)
	if err != nil {
		return view{}, err
	}
	from, to := c.Months()
	v := view{
		records: filter.Apply(src.Records, c),
		counts:  nps.InMonths(src.Counts, from, to),
	}
	if c.Narrows() {
		// survey counts carry no location or segment, so they follow the
		// providers left in the filtered records
		v.counts = nps.InGroups(v.counts, providersOf(v.records))
	}
	s.log.WithFields(logrus.Fields{
		"records":  v.records.Len(),
		"of":       src.Records.Len(),
		"filtered": !c.Empty(),
	}).Debug("view built")
	return v, nil
}

func providersOf(rs types.RecordSet) map[string]struct{} {
	out := make(map[string]struct{}, rs.Len())
	for _, r := range rs.Records {
		out[r.Provider] = struct{}{}
	}
	return out
}
