package dataset

import "network-insights-go/internal/types"

// headerAliases maps normalized header spellings to schema columns. The
// schema name itself always matches.
var headerAliases = map[string]string{
	"protocolo_atendimento":     types.ColProtocolID,
	"protocolo":                 types.ColProtocolID,
	"nome_do_prestador":         types.ColProvider,
	"prestador":                 types.ColProvider,
	"municipio":                 types.ColCity,
	"cidade":                    types.ColCity,
	"uf":                        types.ColState,
	"estado":                    types.ColState,
	"segmento":                  types.ColSegment,
	"seguradora":                types.ColInsurer,
	"data_abertura_atendimento": types.ColOpenTimestamp,
	"data_abertura":             types.ColOpenTimestamp,
	"tempo_chegada_min":         types.ColArrivalMinutes,
	"val_total_items":           types.ColItemValueTotal,
	"val_reembolso":             types.ColRefundValue,
	"is_reembolso":              types.ColIsRefund,
	"is_intermediacao":          types.ColIsIntermediate,
	"nota_nps":                  types.ColNPSRaw,
}

// NPS workbook columns.
const (
	npsGroup      = "group"
	npsMonth      = "month"
	npsPromoters  = "promoters"
	npsNeutrals   = "neutrals"
	npsDetractors = "detractors"
)

var npsRequired = []string{npsGroup, npsMonth, npsPromoters, npsNeutrals, npsDetractors}

var npsAliases = map[string]string{
	"provider":          npsGroup,
	"prestador":         npsGroup,
	"nome_do_prestador": npsGroup,
	"mes_ano":           npsMonth,
	"mes_ano_abertura":  npsMonth,
	"promotores":        npsPromoters,
	"neutros":           npsNeutrals,
	"detratores":        npsDetractors,
}

var schemaColumns = append(append([]string{}, types.RequiredColumns...), types.ColNPSRaw)

// mapHeader returns column name -> index for every recognized header cell.
// The first occurrence of a column wins.
func mapHeader(header []string, known []string, aliases map[string]string) map[string]int {
	valid := make(map[string]bool, len(known))
	for _, k := range known {
		valid[k] = true
	}
	idx := map[string]int{}
	for i, h := range header {
		key := HeaderKey(h)
		col, ok := aliases[key]
		if !ok && valid[key] {
			col, ok = key, true
		}
		if !ok {
			continue
		}
		if _, seen := idx[col]; !seen {
			idx[col] = i
		}
	}
	return idx
}
