package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-insights-go/internal/filter"
	"network-insights-go/internal/types"
)

func quiet() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func opts() Options {
	return Options{CacheTTL: time.Hour, FetchTimeout: time.Second, MinCityServices: 2, MinProviderServices: 1, MinEvaluations: 1}
}

func records() types.RecordSet {
	var recs []types.ServiceRecord
	day := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	add := func(state, city, segment string, n int) {
		for i := 0; i < n; i++ {
			recs = append(recs, types.ServiceRecord{
				ProtocolID:     fmt.Sprintf("%s-%s-%d", city, segment, i),
				Provider:       fmt.Sprintf("%s-P%d", city, i%2),
				State:          state,
				City:           city,
				Segment:        segment,
				Insurer:        "ACME",
				OpenedAt:       day.AddDate(0, 0, i),
				ArrivalMinutes: types.Float(float64(20 + i)),
				ItemValueTotal: types.Float(100),
				NPSRaw:         types.Float(float64(i % 11)),
			})
		}
	}
	add("SP", "SAO PAULO", "AUTO", 12)
	add("SP", "CAMPINAS", "AUTO", 6)
	add("RJ", "NITEROI", "VIDA", 4)
	return types.NewRecordSet(recs)
}

func TestCapillarityFilters(t *testing.T) {
	svc := FromSource(Source{Records: records()}, opts(), quiet())
	ctx := context.Background()

	all, err := svc.Capillarity(ctx, filter.Criteria{}, nil)
	require.NoError(t, err)
	assert.Len(t, all.Cities, 3)
	assert.Equal(t, 22, all.Records)

	sp, err := svc.Capillarity(ctx, filter.Criteria{States: []string{"sp"}}, nil)
	require.NoError(t, err)
	assert.Len(t, sp.Cities, 2)

	min := 10
	big, err := svc.Capillarity(ctx, filter.Criteria{}, &min)
	require.NoError(t, err)
	require.Len(t, big.Cities, 1)
	assert.Equal(t, "SP/SAO PAULO", big.Cities[0].Key)
}

func TestSourceLoadedOnce(t *testing.T) {
	svc := New(opts(), quiet())
	calls := 0
	svc.load = func(context.Context) (Source, error) {
		calls++
		return Source{Records: records()}, nil
	}
	ctx := context.Background()
	_, err := svc.Summary(ctx, filter.Criteria{})
	require.NoError(t, err)
	_, err = svc.Providers(ctx, filter.Criteria{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	svc.Reload()
	_, err = svc.Summary(ctx, filter.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestSourceLoadOutlivesCallerContext(t *testing.T) {
	svc := New(opts(), quiet())
	var loadErr error
	var deadline bool
	svc.load = func(ctx context.Context) (Source, error) {
		loadErr = ctx.Err()
		_, deadline = ctx.Deadline()
		return Source{Records: records()}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src, err := svc.Source(ctx)
	require.NoError(t, err)
	assert.NoError(t, loadErr)
	assert.True(t, deadline)
	assert.Equal(t, 22, src.Records.Len())
}

func TestLoadFailureIsLoadError(t *testing.T) {
	o := opts()
	o.DatasetPath = filepath.Join(t.TempDir(), "missing.xlsx")
	svc := New(o, quiet())

	_, err := svc.Summary(context.Background(), filter.Criteria{})
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, o.DatasetPath, le.Source)
}

func TestMissingColumnPassesThrough(t *testing.T) {
	src := Source{Records: types.RecordSet{Columns: []string{types.ColProtocolID}}}
	svc := FromSource(src, opts(), quiet())
	_, err := svc.Capillarity(context.Background(), filter.Criteria{}, nil)
	var mc *types.MissingColumnError
	require.True(t, errors.As(err, &mc))
}

func TestNPSFallsBackToRawAnswers(t *testing.T) {
	svc := FromSource(Source{Records: records()}, opts(), quiet())
	res, err := svc.NPS(context.Background(), filter.Criteria{})
	require.NoError(t, err)
	assert.True(t, res.FromRaw)
	assert.NotEmpty(t, res.Monthly)
	require.NotNil(t, res.Network)
	assert.Equal(t, 22, res.Network.Respondents)
}

func TestNPSUsesCountsInWindow(t *testing.T) {
	counts := []types.NPSCounts{
		{Group: "SAO PAULO-P0", Month: "2024-01", Promoters: 1},
		{Group: "SAO PAULO-P0", Month: "2024-02", Promoters: 1, Detractors: 1},
	}
	svc := FromSource(Source{Records: records(), Counts: counts}, opts(), quiet())
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.NPS(context.Background(), filter.Criteria{From: &from})
	require.NoError(t, err)
	assert.False(t, res.FromRaw)
	require.Len(t, res.Monthly, 1)
	assert.Equal(t, "2024-02", res.Monthly[0].Month)
	assert.Equal(t, 0.0, res.Monthly[0].NPS)
}

func TestCountsFollowFilteredProviders(t *testing.T) {
	counts := []types.NPSCounts{
		{Group: "SAO PAULO-P0", Month: "2024-02", Promoters: 10},
		{Group: "NITEROI-P0", Month: "2024-02", Detractors: 10},
	}
	svc := FromSource(Source{Records: records(), Counts: counts}, opts(), quiet())
	ctx := context.Background()
	rj := filter.Criteria{States: []string{"RJ"}}

	res, err := svc.NPS(ctx, rj)
	require.NoError(t, err)
	assert.False(t, res.FromRaw)
	require.Len(t, res.ByGroup, 1)
	assert.Equal(t, "NITEROI-P0", res.ByGroup[0].Group)
	require.NotNil(t, res.Network)
	assert.Equal(t, 10, res.Network.Respondents)
	assert.Equal(t, -100.0, res.Network.NPS)
	require.Len(t, res.Monthly, 1)
	assert.Equal(t, -100.0, res.Monthly[0].NPS)

	q, err := svc.Quality(ctx, rj, nil)
	require.NoError(t, err)
	require.Len(t, q.ByProvider.Best, 1)
	assert.Equal(t, "NITEROI-P0", q.ByProvider.Best[0].Group)

	all, err := svc.NPS(ctx, filter.Criteria{})
	require.NoError(t, err)
	assert.Len(t, all.ByGroup, 2)
	require.NotNil(t, all.Network)
	assert.Equal(t, 0.0, all.Network.NPS)
}

func TestFinanceAndQuality(t *testing.T) {
	svc := FromSource(Source{Records: records()}, opts(), quiet())
	ctx := context.Background()

	fin, err := svc.Finance(ctx, filter.Criteria{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 22, fin.Totals.Services)
	assert.NotEmpty(t, fin.Bands)

	q, err := svc.Quality(ctx, filter.Criteria{Segments: []string{"VIDA"}}, nil)
	require.NoError(t, err)
	require.Len(t, q.ArrivalBySegment, 1)
	assert.Equal(t, "VIDA", q.ArrivalBySegment[0].Key)
}
