package dataset

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"network-insights-go/internal/logger"
	"network-insights-go/internal/types"
)

// LoadNPS reads pre-aggregated survey counts (group, month, promoters,
// neutrals, detractors) from the first sheet of a workbook. Groups are
// canonicalized like provider names; months are normalized to YYYY-MM.
func LoadNPS(path string) ([]types.NPSCounts, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return npsFromWorkbook(f, logger.New().WithField("component", "dataset.nps").WithField("path", path))
}

// LoadNPSReader is LoadNPS over an in-memory workbook.
func LoadNPSReader(r io.Reader) ([]types.NPSCounts, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "open workbook")
	}
	defer f.Close()
	return npsFromWorkbook(f, logger.New().WithField("component", "dataset.nps"))
}

func npsFromWorkbook(f *excelize.File, log *logrus.Entry) ([]types.NPSCounts, error) {
	rows, err := firstSheetRows(f)
	if err != nil {
		return nil, err
	}
	counts, err := parseCounts(rows)
	if err != nil {
		log.WithError(err).Error("schema check failed")
		return nil, err
	}
	log.WithField("rows", len(counts)).Info("nps counts loaded")
	return counts, nil
}

func parseCounts(rows [][]string) ([]types.NPSCounts, error) {
	idx := mapHeader(rows[0], npsRequired, npsAliases)
	var missing []string
	for _, c := range npsRequired {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &types.MissingColumnError{Missing: missing}
	}

	out := []types.NPSCounts{}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		month := cell(row, idx, npsMonth)
		if t, ok := parseTime(month); ok {
			month = t.Format("2006-01")
		} else if t, ok := parseTime(month + "-01"); ok {
			month = t.Format("2006-01")
		}
		out = append(out, types.NPSCounts{
			Group:      Category(cell(row, idx, npsGroup)),
			Month:      month,
			Promoters:  parseInt(cell(row, idx, npsPromoters)),
			Neutrals:   parseInt(cell(row, idx, npsNeutrals)),
			Detractors: parseInt(cell(row, idx, npsDetractors)),
		})
	}
	return out, nil
}
