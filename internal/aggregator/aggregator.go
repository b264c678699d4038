package aggregator

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"network-insights-go/internal/types"
)

// Reduce names a reduction applied to one source field within a group.
type Reduce string

const (
	Count   Reduce = "count"
	NUnique Reduce = "nunique"
	Sum     Reduce = "sum"
	Mean    Reduce = "mean"
)

// Field reads one column of a service record. Text is used for grouping keys
// and nunique, Number for sum and mean; Number reports false for a missing value.
type Field struct {
	Name   string
	Text   func(types.ServiceRecord) string
	Number func(types.ServiceRecord) (float64, bool)
}

// Spec maps an output column to a source field and reduction.
type Spec struct {
	Output string
	Source Field
	Reduce Reduce
}

// Row is one group of the aggregated table.
type Row struct {
	Keys   []string           `json:"keys"`
	Values map[string]float64 `json:"values"`
}

// Value returns the reduced value for a column; NaN for a mean with no inputs.
func (r Row) Value(col string) float64 {
	v, ok := r.Values[col]
	if !ok {
		return math.NaN()
	}
	return v
}

// Defined reports whether the column holds a real number.
func (r Row) Defined(col string) bool {
	return !math.IsNaN(r.Value(col))
}

// Table is the aggregated output: one row per key combination present in the
// input, ordered by key.
type Table struct {
	KeyNames []string `json:"key_names"`
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
}

type acc struct {
	keys    []string
	count   map[string]int
	sum     map[string]float64
	n       map[string]int
	uniques map[string]map[string]struct{}
}

// Aggregate groups records by the key fields and reduces each group per spec.
// Missing numeric values are skipped by sum and mean. An empty input yields a
// table with the right columns and no rows.
func Aggregate(records []types.ServiceRecord, keys []Field, specs []Spec) Table {
	t := Table{
		KeyNames: make([]string, 0, len(keys)),
		Columns:  make([]string, 0, len(specs)),
		Rows:     []Row{},
	}
	for _, k := range keys {
		t.KeyNames = append(t.KeyNames, k.Name)
	}
	for _, s := range specs {
		t.Columns = append(t.Columns, s.Output)
	}

	groups := map[string]*acc{}
	for _, r := range records {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k.Text(r)
		}
		id := strings.Join(parts, "\x00")
		g, ok := groups[id]
		if !ok {
			g = &acc{
				keys:    parts,
				count:   map[string]int{},
				sum:     map[string]float64{},
				n:       map[string]int{},
				uniques: map[string]map[string]struct{}{},
			}
			groups[id] = g
		}
		for _, s := range specs {
			g.add(s, r)
		}
	}

	for _, g := range groups {
		row := Row{Keys: g.keys, Values: make(map[string]float64, len(specs))}
		for _, s := range specs {
			row.Values[s.Output] = g.result(s)
		}
		t.Rows = append(t.Rows, row)
	}
	sort.Slice(t.Rows, func(i, j int) bool {
		return lessKeys(t.Rows[i].Keys, t.Rows[j].Keys)
	})
	return t
}

func (g *acc) add(s Spec, r types.ServiceRecord) {
	switch s.Reduce {
	case Count:
		if present(s.Source, r) {
			g.count[s.Output]++
		}
	case NUnique:
		v, ok := textOf(s.Source, r)
		if !ok {
			return
		}
		set, exists := g.uniques[s.Output]
		if !exists {
			set = map[string]struct{}{}
			g.uniques[s.Output] = set
		}
		set[v] = struct{}{}
	case Sum, Mean:
		if s.Source.Number == nil {
			return
		}
		if v, ok := s.Source.Number(r); ok && !math.IsNaN(v) {
			g.sum[s.Output] += v
			g.n[s.Output]++
		}
	}
}

func (g *acc) result(s Spec) float64 {
	switch s.Reduce {
	case Count:
		return float64(g.count[s.Output])
	case NUnique:
		return float64(len(g.uniques[s.Output]))
	case Sum:
		return g.sum[s.Output]
	case Mean:
		if g.n[s.Output] == 0 {
			return math.NaN()
		}
		return g.sum[s.Output] / float64(g.n[s.Output])
	}
	return math.NaN()
}

func present(f Field, r types.ServiceRecord) bool {
	if f.Number != nil {
		v, ok := f.Number(r)
		return ok && !math.IsNaN(v)
	}
	if f.Text != nil {
		return f.Text(r) != ""
	}
	return true
}

func textOf(f Field, r types.ServiceRecord) (string, bool) {
	if f.Text != nil {
		v := f.Text(r)
		return v, v != ""
	}
	if f.Number != nil {
		v, ok := f.Number(r)
		if !ok || math.IsNaN(v) {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

func lessKeys(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
