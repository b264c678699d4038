package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"network-insights-go/internal/types"
)

var header = []interface{}{
	"Protocolo Atendimento", "Nome do Prestador", "Município", "UF", "Segmento", "Seguradora",
	"data_abertura_atendimento", "tempo_chegada_min", "val_total_items", "val_reembolso",
	"is_reembolso", "is_intermediacao", "nota_nps",
}

func workbook(t *testing.T, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	return f
}

func save(t *testing.T, f *excelize.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	f := workbook(t,
		header,
		[]interface{}{"P1", "Guincho Rápido", "São Paulo", "sp", "auto", "Acme", "2024-03-10 09:00:00", 35, 150.5, "", "0", "1", 10},
		[]interface{}{"P2", "guincho rapido", "SAO PAULO", "SP", "AUTO", "ACME", "10/03/2024", "", "200,25", 50, "sim", "false", ""},
		[]interface{}{"P3", "X", "Y", "RJ", "VIDA", "ACME", "not a date", 10, 1, 0, "0", "0", ""},
	)
	rs, err := Load(save(t, f))
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len(), "undated row dropped")
	assert.True(t, rs.HasColumn(types.ColNPSRaw))
	require.NoError(t, rs.Validate())

	a, b := rs.Records[0], rs.Records[1]
	assert.Equal(t, "GUINCHO RAPIDO", a.Provider)
	assert.Equal(t, a.Provider, b.Provider)
	assert.Equal(t, "SAO PAULO", a.City)
	assert.Equal(t, "SP", a.State)
	assert.Equal(t, "2024-03", a.Month())
	require.NotNil(t, a.ArrivalMinutes)
	assert.Equal(t, 35.0, *a.ArrivalMinutes)
	assert.Nil(t, b.ArrivalMinutes)
	require.NotNil(t, b.ItemValueTotal)
	assert.InDelta(t, 200.25, *b.ItemValueTotal, 1e-9)
	assert.True(t, a.IsIntermediate)
	assert.True(t, b.IsRefund)
	require.NotNil(t, a.NPSRaw)
	assert.Nil(t, b.NPSRaw)
}

func TestLoadMissingColumns(t *testing.T) {
	f := workbook(t, []interface{}{"protocol_id", "provider", "city"})
	_, err := Load(save(t, f))
	require.Error(t, err)
	var mc *types.MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, types.ColState, mc.Missing[0])
	assert.NotContains(t, mc.Missing, types.ColNPSRaw)
}

func TestLoadWithoutNPSColumn(t *testing.T) {
	f := workbook(t,
		header[:12],
		[]interface{}{"P1", "A", "B", "SP", "AUTO", "ACME", "2024-01-01", 1, 1, 0, 0, 0},
	)
	rs, err := Load(save(t, f))
	require.NoError(t, err)
	assert.False(t, rs.HasColumn(types.ColNPSRaw))
	assert.Equal(t, 1, rs.Len())
}

func TestLoadNPS(t *testing.T) {
	f := workbook(t,
		[]interface{}{"Prestador", "Mês Ano", "Promotores", "Neutros", "Detratores"},
		[]interface{}{"Guincho Rápido", "2024-03", 7, 2, 1},
	)
	counts, err := LoadNPS(save(t, f))
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, types.NPSCounts{Group: "GUINCHO RAPIDO", Month: "2024-03", Promoters: 7, Neutrals: 2, Detractors: 1}, counts[0])
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "SAO PAULO", Canonical("  São   Paulo "))
	assert.Equal(t, "ACAI", Canonical("açaí"))
	assert.Equal(t, NotInformed, Category(" "))
	assert.Equal(t, "data_abertura", HeaderKey("Data Abertura"))
	assert.Equal(t, "municipio", HeaderKey("Município"))
}

func TestParseTimeSerial(t *testing.T) {
	got, ok := parseTime("45361")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestSummarize(t *testing.T) {
	rs := types.NewRecordSet([]types.ServiceRecord{
		{ProtocolID: "1", Provider: "A", State: "SP", City: "X", IsRefund: true, ArrivalMinutes: types.Float(10)},
		{ProtocolID: "2", Provider: "B", State: "SP", City: "X", IsIntermediate: true, ArrivalMinutes: types.Float(30)},
		{ProtocolID: "3", Provider: "A", State: "RJ", City: "X"},
		{ProtocolID: "4", Provider: "A", State: "RJ", City: "X"},
	})
	s := Summarize(rs)
	assert.Equal(t, 4, s.TotalServices)
	assert.Equal(t, 2, s.UniqueProviders)
	assert.Equal(t, 2, s.CitiesServed)
	require.NotNil(t, s.MeanArrival)
	assert.Equal(t, 20.0, *s.MeanArrival)
	assert.Equal(t, 25.0, s.RefundPct)
	assert.Equal(t, 25.0, s.IntermediationPct)

	empty := Summarize(types.NewRecordSet(nil))
	assert.Nil(t, empty.MeanArrival)
	assert.Equal(t, 0.0, empty.RefundPct)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	f := workbook(t, header[:12], []interface{}{"P1", "A", "B", "SP", "AUTO", "ACME", "2024-01-01", 1, 1, 0, 0, 0})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	rs, err := LoadSource(context.Background(), srv.URL+"/data.xlsx", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprint(http.StatusNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("HTTPS://example.com/a.xlsx"))
	assert.False(t, IsRemote("/data/a.xlsx"))
}
