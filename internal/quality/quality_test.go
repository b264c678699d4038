package quality

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-insights-go/internal/aggregator"
	"network-insights-go/internal/nps"
	"network-insights-go/internal/types"
)

func TestRankMinimumRespondents(t *testing.T) {
	points := []nps.Point{
		{Group: "A", Respondents: 10, NPS: 80},
		{Group: "B", Respondents: 4, NPS: 100},
		{Group: "C", Respondents: 5, NPS: -20},
		{Group: "D", Respondents: 50, NPS: 80},
	}
	r := Rank(points, 5)
	require.Len(t, r.Best, 3)
	assert.Equal(t, "D", r.Best[0].Group, "ties favor more respondents")
	assert.Equal(t, "A", r.Best[1].Group)
	assert.Equal(t, "C", r.Worst[0].Group)
	for _, p := range r.Best {
		assert.NotEqual(t, "B", p.Group)
	}
}

func TestRankCapsLength(t *testing.T) {
	var points []nps.Point
	for i := 0; i < 25; i++ {
		points = append(points, nps.Point{Group: fmt.Sprintf("G%02d", i), Respondents: 10, NPS: float64(i)})
	}
	r := Rank(points, 1)
	assert.Len(t, r.Best, RankSize)
	assert.Len(t, r.Worst, RankSize)
	assert.Equal(t, "G24", r.Best[0].Group)
	assert.Equal(t, "G00", r.Worst[0].Group)
}

func TestArrivalBy(t *testing.T) {
	rs := types.NewRecordSet([]types.ServiceRecord{
		{ProtocolID: "1", Segment: "AUTO", ArrivalMinutes: types.Float(30)},
		{ProtocolID: "2", Segment: "AUTO", ArrivalMinutes: types.Float(50)},
		{ProtocolID: "3", Segment: "VIDA", ArrivalMinutes: types.Float(90)},
		{ProtocolID: "4", Segment: "PET"},
	})
	got := ArrivalBy(rs, aggregator.Segment)
	require.Len(t, got, 3)
	assert.Equal(t, Arrival{Key: "VIDA", Services: 1, Minutes: 90}, got[0])
	assert.Equal(t, Arrival{Key: "AUTO", Services: 2, Minutes: 40}, got[1])
	assert.Equal(t, Arrival{Key: "PET", Services: 1, Minutes: 0}, got[2])
}

func TestBuildFallsBackToRawAnswers(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	rs := types.NewRecordSet([]types.ServiceRecord{
		{ProtocolID: "1", Provider: "A", State: "SP", City: "X", OpenedAt: jan, NPSRaw: types.Float(10)},
		{ProtocolID: "2", Provider: "A", State: "SP", City: "X", OpenedAt: jan, NPSRaw: types.Float(2)},
		{ProtocolID: "3", Provider: "B", State: "SP", City: "Y", OpenedAt: feb, NPSRaw: types.Float(9)},
		{ProtocolID: "4", Provider: "B", State: "SP", City: "Y", OpenedAt: feb},
	})
	rep := Build(rs, nil, 1)
	require.Len(t, rep.Monthly, 2)
	assert.Equal(t, "2024-01", rep.Monthly[0].Month)
	assert.InDelta(t, 0.0, rep.Monthly[0].NPS, 1e-12)
	assert.InDelta(t, 100.0, rep.Monthly[1].NPS, 1e-12)

	require.Len(t, rep.ByCity.Best, 2)
	assert.Equal(t, "SP/Y", rep.ByCity.Best[0].Group)
	assert.Equal(t, "B", rep.ByProvider.Best[0].Group)
}

func TestBuildPrefersCounts(t *testing.T) {
	rs := types.NewRecordSet([]types.ServiceRecord{
		{ProtocolID: "1", Provider: "A", NPSRaw: types.Float(0)},
	})
	counts := []types.NPSCounts{
		{Group: "A", Month: "2024-01", Promoters: 3, Neutrals: 1, Detractors: 1},
		{Group: "Z", Month: "2024-01"},
	}
	rep := Build(rs, counts, DefaultMinEvaluations)
	require.Len(t, rep.ByProvider.Best, 1)
	assert.Equal(t, "A", rep.ByProvider.Best[0].Group)
	assert.InDelta(t, 40.0, rep.ByProvider.Best[0].NPS, 1e-12)
	assert.Empty(t, rep.ByCity.Best, "below the respondent floor")
}
