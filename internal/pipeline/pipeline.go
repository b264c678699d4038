// Package pipeline wires the engine stages into the city capillarity index and
// the provider performance score. Each Run is a pure function of its inputs:
// nothing derived is cached between calls.
package pipeline

import (
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// Defaults for the minimum-count inclusion filters.
const (
	DefaultMinCityServices     = 10
	DefaultMinProviderServices = 1
	TopN                       = 10
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func orDiscard(e *logrus.Entry) *logrus.Entry {
	if e == nil {
		return quietLog()
	}
	return e
}

// ranked returns the indices of n rows ordered by score, ties broken by key.
func ranked(n int, score func(int) float64, key func(int) string, desc bool) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := score(idx[a]), score(idx[b])
		if sa != sb {
			if desc {
				return sa > sb
			}
			return sa < sb
		}
		return key(idx[a]) < key(idx[b])
	})
	return idx
}

func head[T any](rows []T, n int) []T {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
