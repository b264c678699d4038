package actionable

import (
	"sort"
	"strconv"
	"strings"

	"network-insights-go/internal/classify"
	"network-insights-go/internal/types"
)

// NoAction is the text given to a group for which no rule fires.
const NoAction = "No specific suggestion."

// Separator joins triggered messages.
const Separator = " | "

// Rule pairs a predicate with the message it contributes when true.
type Rule[T any] struct {
	Name    string
	Message string
	When    func(row T, b *Batch[T]) bool
}

// Batch exposes batch-relative thresholds to rules. Percentiles are computed
// once per batch and metric.
type Batch[T any] struct {
	rows []T
	memo map[string]threshold
}

type threshold struct {
	value float64
	ok    bool
}

// NewBatch wraps the rows of one scoring run.
func NewBatch[T any](rows []T) *Batch[T] {
	return &Batch[T]{rows: rows, memo: map[string]threshold{}}
}

// Rows returns the batch rows.
func (b *Batch[T]) Rows() []T { return b.rows }

// Metric reads one number from a row; ok false leaves the row out of the
// percentile.
type Metric[T any] func(T) (float64, bool)

// Percentile returns the q-quantile of the metric across the batch. ok is false
// when fewer than two distinct values exist, so a metric with no spread never
// flags anyone.
func (b *Batch[T]) Percentile(name string, q float64, metric Metric[T]) (float64, bool) {
	key := name + "@" + strconv.FormatFloat(q, 'f', -1, 64)
	if t, ok := b.memo[key]; ok {
		return t.value, t.ok
	}
	values := make([]float64, 0, len(b.rows))
	for _, r := range b.rows {
		if v, ok := metric(r); ok {
			values = append(values, v)
		}
	}
	t := threshold{}
	if classify.Distinct(values) > 1 {
		t = threshold{value: classify.Quantile(values, q), ok: true}
	}
	b.memo[key] = t
	return t.value, t.ok
}

// Above reports whether the row's metric is strictly above the batch q-quantile.
func Above[T any](name string, q float64, metric Metric[T]) func(T, *Batch[T]) bool {
	return func(row T, b *Batch[T]) bool {
		v, ok := metric(row)
		if !ok {
			return false
		}
		p, ok := b.Percentile(name, q, metric)
		return ok && v > p
	}
}

// Below reports whether the row's metric is strictly below the batch q-quantile.
func Below[T any](name string, q float64, metric Metric[T]) func(T, *Batch[T]) bool {
	return func(row T, b *Batch[T]) bool {
		v, ok := metric(row)
		if !ok {
			return false
		}
		p, ok := b.Percentile(name, q, metric)
		return ok && v < p
	}
}

// Engine evaluates an ordered rule list independently for each row.
type Engine[T any] struct {
	Rules []Rule[T]
	Key   func(T) string
}

// Fired returns the names of the rules that hold for the row, in rule order.
func (e Engine[T]) Fired(row T, b *Batch[T]) []string {
	var names []string
	for _, r := range e.Rules {
		if r.When(row, b) {
			names = append(names, r.Name)
		}
	}
	return names
}

// Any reports whether at least one rule holds.
func (e Engine[T]) Any(row T, b *Batch[T]) bool {
	for _, r := range e.Rules {
		if r.When(row, b) {
			return true
		}
	}
	return false
}

// Suggest collects the messages of every rule that holds, deduplicated and
// sorted. With no message the set carries the NoAction text.
func (e Engine[T]) Suggest(row T, b *Batch[T]) types.SuggestionSet {
	seen := map[string]struct{}{}
	for _, r := range e.Rules {
		if r.When(row, b) {
			seen[r.Message] = struct{}{}
		}
	}
	set := types.SuggestionSet{Text: NoAction}
	if e.Key != nil {
		set.Key = e.Key(row)
	}
	if len(seen) == 0 {
		return set
	}
	msgs := make([]string, 0, len(seen))
	for m := range seen {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	set.Suggestions = msgs
	set.Text = strings.Join(msgs, Separator)
	return set
}

// SuggestAll runs Suggest for every row against the same batch.
func (e Engine[T]) SuggestAll(rows []T) []types.SuggestionSet {
	b := NewBatch(rows)
	out := make([]types.SuggestionSet, len(rows))
	for i, r := range rows {
		out[i] = e.Suggest(r, b)
	}
	return out
}
