package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateListsEveryMissingColumn(t *testing.T) {
	rs := RecordSet{Columns: []string{ColProtocolID, ColProvider, ColCity}}

	err := rs.Validate()
	require.Error(t, err)

	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, RequiredColumns[3:], mc.Missing)
	assert.Contains(t, err.Error(), "state, segment, insurer")
}

func TestValidateFullSchema(t *testing.T) {
	rs := NewRecordSet(nil)
	assert.NoError(t, rs.Validate())
	assert.True(t, rs.HasColumn(ColNPSRaw))
	assert.Equal(t, 0, rs.Len())
}

func TestValidateExplicitColumns(t *testing.T) {
	rs := RecordSet{Columns: []string{ColCity}}
	assert.NoError(t, rs.Validate(ColCity))

	err := rs.Validate(ColCity, ColNPSRaw)
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, []string{ColNPSRaw}, mc.Missing)
}

func TestGroupMetricsRates(t *testing.T) {
	g := GroupMetrics{Services: 20, Refunds: 5, Intermediations: 2}
	assert.InDelta(t, 25.0, g.RefundPct(), 1e-9)
	assert.InDelta(t, 10.0, g.IntermediationPct(), 1e-9)
	assert.Equal(t, 13, g.Unserved())

	empty := GroupMetrics{}
	assert.Equal(t, 0.0, empty.RefundPct())
	assert.Equal(t, 0.0, empty.IntermediationPct())

	over := GroupMetrics{Services: 3, Refunds: 2, Intermediations: 2}
	assert.Equal(t, 0, over.Unserved())
}

func TestRecordMonthAndCounts(t *testing.T) {
	r := ServiceRecord{OpenedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2024-03", r.Month())

	c := NPSCounts{Group: "A", Promoters: 1, Neutrals: 2, Detractors: 3}
	sum := c.Add(NPSCounts{Group: "B", Promoters: 4})
	assert.Equal(t, "A", sum.Group)
	assert.Equal(t, 10, sum.Total())
}
