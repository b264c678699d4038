package nps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-insights-go/internal/types"
)

func TestScoreExact(t *testing.T) {
	got, ok := Score(types.NPSCounts{Promoters: 70, Neutrals: 20, Detractors: 10})
	require.True(t, ok)
	assert.Equal(t, 60.0, got)
}

func TestScoreZeroRespondentsIsUndefined(t *testing.T) {
	got, ok := Score(types.NPSCounts{})
	assert.False(t, ok)
	assert.Equal(t, 0.0, got)
}

// Pins the two missing-data policies side by side. A zero-respondent NPS is
// excluded while an empty-denominator rate reports 0. Whether these should be
// unified is still open with the business owners; change both together.
func TestMissingDataPoliciesDifferPendingConfirmation(t *testing.T) {
	_, defined := Score(types.NPSCounts{Group: "X", Month: "2024-01"})
	assert.False(t, defined)
	assert.Empty(t, Series([]types.NPSCounts{{Group: "X", Month: "2024-01"}}))

	assert.Equal(t, 0.0, types.Percent(0, 0))
	assert.Equal(t, 0.0, types.GroupMetrics{}.RefundPct())
}

func TestScoreNotClamped(t *testing.T) {
	got, ok := Score(types.NPSCounts{Promoters: 10, Neutrals: -5})
	require.True(t, ok)
	assert.Equal(t, 200.0, got)
}

func TestTally(t *testing.T) {
	c := types.NPSCounts{}
	for _, raw := range []float64{10, 9, 8, 7, 6, 0} {
		c = Tally(c, raw)
	}
	assert.Equal(t, 2, c.Promoters)
	assert.Equal(t, 2, c.Neutrals)
	assert.Equal(t, 2, c.Detractors)
}

func TestFromResponsesGroupsByMonth(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	records := []types.ServiceRecord{
		{Provider: "A", OpenedAt: jan, NPSRaw: types.Float(10)},
		{Provider: "A", OpenedAt: jan, NPSRaw: types.Float(3)},
		{Provider: "A", OpenedAt: feb, NPSRaw: types.Float(9)},
		{Provider: "A", OpenedAt: feb},
		{Provider: "B", OpenedAt: jan, NPSRaw: types.Float(7)},
	}
	got := FromResponses(records, func(r types.ServiceRecord) string { return r.Provider })
	require.Len(t, got, 3)
	assert.Equal(t, types.NPSCounts{Group: "A", Month: "2024-01", Promoters: 1, Detractors: 1}, got[0])
	assert.Equal(t, types.NPSCounts{Group: "A", Month: "2024-02", Promoters: 1}, got[1])
	assert.Equal(t, types.NPSCounts{Group: "B", Month: "2024-01", Neutrals: 1}, got[2])
}

func TestSeriesMonthlyAndByGroup(t *testing.T) {
	counts := []types.NPSCounts{
		{Group: "A", Month: "2024-01", Promoters: 8, Detractors: 2},
		{Group: "B", Month: "2024-01", Promoters: 0, Neutrals: 5, Detractors: 5},
		{Group: "A", Month: "2024-02", Promoters: 1},
		{Group: "C", Month: "2024-02"},
	}

	series := Series(counts)
	require.Len(t, series, 3)
	assert.Equal(t, Point{Group: "A", Month: "2024-01", Respondents: 10, NPS: 60}, series[0])

	monthly := Monthly(counts)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Month)
	assert.InDelta(t, 5.0, monthly[0].NPS, 1e-9)
	assert.Equal(t, 20, monthly[0].Respondents)
	assert.Equal(t, 100.0, monthly[1].NPS)

	byGroup := ForGroups(counts)
	assert.Len(t, byGroup, 2, "C has no respondents and is excluded")
	assert.InDelta(t, 7.0/11.0*100, byGroup["A"].NPS, 1e-9)
	assert.Equal(t, -50.0, byGroup["B"].NPS)
}

func TestInMonths(t *testing.T) {
	counts := []types.NPSCounts{{Month: "2023-12"}, {Month: "2024-01"}, {Month: "2024-03"}}
	assert.Len(t, InMonths(counts, "2024-01", ""), 2)
	assert.Len(t, InMonths(counts, "", "2024-01"), 2)
	assert.Len(t, InMonths(counts, "2024-01", "2024-02"), 1)
}

func TestInGroups(t *testing.T) {
	counts := []types.NPSCounts{{Group: "A", Promoters: 1}, {Group: "B", Detractors: 1}, {Group: "A", Month: "2024-02"}}
	kept := InGroups(counts, map[string]struct{}{"A": {}})
	require.Len(t, kept, 2)
	for _, c := range kept {
		assert.Equal(t, "A", c.Group)
	}
	assert.Empty(t, InGroups(counts, nil))
}
