package aggregator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network-insights-go/internal/types"
)

func rec(id, provider, state, city string, value *float64, arrival *float64, refund, inter bool) types.ServiceRecord {
	return types.ServiceRecord{
		ProtocolID:     id,
		Provider:       provider,
		State:          state,
		City:           city,
		OpenedAt:       time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		ItemValueTotal: value,
		ArrivalMinutes: arrival,
		IsRefund:       refund,
		IsIntermediate: inter,
	}
}

func TestAggregateCountAndMean(t *testing.T) {
	records := []types.ServiceRecord{
		rec("1", "A", "SP", "CAMPINAS", types.Float(100), nil, false, false),
		rec("2", "A", "SP", "CAMPINAS", types.Float(200), nil, false, false),
		rec("3", "A", "SP", "CAMPINAS", types.Float(300), nil, false, false),
	}
	tbl := Aggregate(records, []Field{Provider}, []Spec{
		{Output: "n", Source: ProtocolID, Reduce: Count},
		{Output: "mean", Source: ItemValue, Reduce: Mean},
	})

	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"A"}, tbl.Rows[0].Keys)
	assert.Equal(t, 3.0, tbl.Rows[0].Value("n"))
	assert.Equal(t, 200.0, tbl.Rows[0].Value("mean"))
}

func TestAggregateSkipsMissingNumbers(t *testing.T) {
	records := []types.ServiceRecord{
		rec("1", "A", "SP", "X", types.Float(10), nil, false, false),
		rec("2", "A", "SP", "X", nil, nil, false, false),
		rec("3", "A", "SP", "X", types.Float(30), nil, false, false),
	}
	tbl := Aggregate(records, []Field{Provider}, []Spec{
		{Output: "sum", Source: ItemValue, Reduce: Sum},
		{Output: "mean", Source: ItemValue, Reduce: Mean},
		{Output: "count", Source: ItemValue, Reduce: Count},
		{Output: "arrival", Source: Arrival, Reduce: Mean},
	})

	row := tbl.Rows[0]
	assert.Equal(t, 40.0, row.Value("sum"))
	assert.Equal(t, 20.0, row.Value("mean"), "missing value is excluded, not zero-filled")
	assert.Equal(t, 2.0, row.Value("count"))
	assert.True(t, math.IsNaN(row.Value("arrival")))
	assert.False(t, row.Defined("arrival"))
}

func TestAggregateEmptyInputKeepsShape(t *testing.T) {
	tbl := Aggregate(nil, []Field{State, City}, metricSpecs)
	assert.Equal(t, []string{types.ColState, types.ColCity}, tbl.KeyNames)
	assert.Len(t, tbl.Columns, len(metricSpecs))
	assert.NotNil(t, tbl.Rows)
	assert.Empty(t, tbl.Rows)
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := rec("1", "B", "RJ", "NITEROI", types.Float(1), nil, false, false)
	b := rec("2", "A", "SP", "SANTOS", types.Float(2), nil, false, false)
	c := rec("3", "A", "RJ", "NITEROI", types.Float(3), nil, false, false)

	first := Aggregate([]types.ServiceRecord{a, b, c}, []Field{State, City}, metricSpecs)
	second := Aggregate([]types.ServiceRecord{c, b, a}, []Field{State, City}, metricSpecs)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"RJ", "NITEROI"}, first.Rows[0].Keys)
}

func TestMetricsCity(t *testing.T) {
	records := []types.ServiceRecord{
		rec("1", "P1", "SP", "CAMPINAS", types.Float(100), types.Float(30), true, false),
		rec("1", "P1", "SP", "CAMPINAS", types.Float(50), types.Float(50), true, false),
		rec("2", "P2", "SP", "CAMPINAS", types.Float(100), nil, false, true),
		rec("3", "", "SP", "SANTOS", nil, nil, false, false),
	}
	got := CityMetrics(types.NewRecordSet(records))
	require.Len(t, got, 2)

	campinas := got[0]
	assert.Equal(t, "SP/CAMPINAS", campinas.Key)
	assert.Equal(t, 2, campinas.Services, "services count distinct protocols")
	assert.Equal(t, 2, campinas.Providers)
	assert.Equal(t, 2, campinas.Refunds)
	assert.Equal(t, 1, campinas.Intermediations)
	assert.True(t, campinas.HasArrival)
	assert.InDelta(t, 40.0, campinas.MeanArrival, 1e-9)
	assert.InDelta(t, 250.0, campinas.TotalValue, 1e-9)

	santos := got[1]
	assert.Equal(t, 1, santos.Services)
	assert.Equal(t, 0, santos.Providers)
	assert.False(t, santos.HasArrival)
	assert.Equal(t, 0.0, santos.TotalValue)
}

func TestMinServices(t *testing.T) {
	groups := []types.GroupMetrics{{Key: "a", Services: 5}, {Key: "b", Services: 10}, {Key: "c", Services: 50}}
	got := MinServices(groups, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Key)
	assert.Len(t, MinServices(groups, 0), 3)
}
