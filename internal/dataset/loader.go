package dataset

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"network-insights-go/internal/logger"
	"network-insights-go/internal/types"
)

// Load reads service records from the first sheet of an xlsx workbook.
// Headers are matched by normalized name or a known alias; a missing required
// column fails with *types.MissingColumnError. Rows without a readable open
// timestamp are dropped.
func Load(path string) (types.RecordSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return types.RecordSet{}, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return fromWorkbook(f, logger.New().WithField("component", "dataset.loader").WithField("path", path))
}

// LoadReader is Load over an in-memory workbook.
func LoadReader(r io.Reader) (types.RecordSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return types.RecordSet{}, eris.Wrap(err, "open workbook")
	}
	defer f.Close()
	return fromWorkbook(f, logger.New().WithField("component", "dataset.loader"))
}

func firstSheetRows(f *excelize.File) ([][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, eris.New("no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, eris.Wrap(err, "read rows")
	}
	if len(rows) == 0 {
		return nil, eris.New("no header row")
	}
	return rows, nil
}

func fromWorkbook(f *excelize.File, log *logrus.Entry) (types.RecordSet, error) {
	rows, err := firstSheetRows(f)
	if err != nil {
		return types.RecordSet{}, err
	}
	rs, dropped, err := parseRecords(rows)
	if err != nil {
		log.WithError(err).Error("schema check failed")
		return types.RecordSet{}, err
	}
	log.WithFields(logrus.Fields{
		"records": rs.Len(),
		"dropped": dropped,
		"nps_raw": rs.HasColumn(types.ColNPSRaw),
	}).Info("dataset loaded")
	return rs, nil
}

// parseRecords turns header + data rows into a validated RecordSet and
// reports how many rows were dropped.
func parseRecords(rows [][]string) (types.RecordSet, int, error) {
	idx := mapHeader(rows[0], schemaColumns, headerAliases)
	cols := make([]string, 0, len(schemaColumns))
	for _, c := range schemaColumns {
		if _, ok := idx[c]; ok {
			cols = append(cols, c)
		}
	}
	rs := types.RecordSet{Records: []types.ServiceRecord{}, Columns: cols}
	if err := rs.Validate(); err != nil {
		return types.RecordSet{}, 0, err
	}

	dropped := 0
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec, ok := parseRecord(row, idx)
		if !ok {
			dropped++
			continue
		}
		rs.Records = append(rs.Records, rec)
	}
	return rs, dropped, nil
}

func parseRecord(row []string, idx map[string]int) (types.ServiceRecord, bool) {
	opened, ok := parseTime(cell(row, idx, types.ColOpenTimestamp))
	if !ok {
		return types.ServiceRecord{}, false
	}
	rec := types.ServiceRecord{
		ProtocolID:     Category(cell(row, idx, types.ColProtocolID)),
		Provider:       Category(cell(row, idx, types.ColProvider)),
		City:           Category(cell(row, idx, types.ColCity)),
		State:          Category(cell(row, idx, types.ColState)),
		Segment:        Category(cell(row, idx, types.ColSegment)),
		Insurer:        Category(cell(row, idx, types.ColInsurer)),
		OpenedAt:       opened,
		IsRefund:       parseBool(cell(row, idx, types.ColIsRefund)),
		IsIntermediate: parseBool(cell(row, idx, types.ColIsIntermediate)),
	}
	rec.ArrivalMinutes, _ = parseFloat(cell(row, idx, types.ColArrivalMinutes))
	rec.ItemValueTotal, _ = parseFloat(cell(row, idx, types.ColItemValueTotal))
	rec.RefundValue, _ = parseFloat(cell(row, idx, types.ColRefundValue))
	rec.NPSRaw, _ = parseFloat(cell(row, idx, types.ColNPSRaw))
	return rec, true
}
