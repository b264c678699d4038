package actionable

import (
	"fmt"
	"sort"
	"strings"

	"network-insights-go/internal/classify"
	"network-insights-go/internal/types"
)

// GapShare is the share of scored cities in the worst coverage status above
// which a recruitment card is raised.
const GapShare = 0.25

// ActionCard is the headline recommendation for a capillarity run.
type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Generate summarizes a capillarity run into a single headline card.
func Generate(cities []types.CityScore) ActionCard {
	var gaps []types.CityScore
	for _, c := range cities {
		if c.Score.Status == classify.Capillarity.Worst() {
			gaps = append(gaps, c)
		}
	}
	if len(cities) == 0 || float64(len(gaps))/float64(len(cities)) < GapShare {
		return ActionCard{
			Insight: "No strong coverage gap pattern detected",
			Action:  "Monitor and collect more data",
			Impact:  "Low immediate intervention",
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Score.Composite < gaps[j].Score.Composite
	})
	names := make([]string, 0, 3)
	for i := 0; i < len(gaps) && i < 3; i++ {
		names = append(names, gaps[i].Key)
	}
	return ActionCard{
		Insight: fmt.Sprintf("%d of %d cities with coverage gap (%.0f%%)",
			len(gaps), len(cities), float64(len(gaps))/float64(len(cities))*100),
		Action: "Prioritize provider recruitment in " + strings.Join(names, ", "),
		Impact: "Reduce refunds and intermediation costs",
	}
}
