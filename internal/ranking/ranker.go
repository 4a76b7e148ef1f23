package ranking

import (
	"math"
	"sort"
	"strconv"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Rank stable-sorts tb by CompositeScore descending with missing scores last, then puts
// Rank (1..N) in the first column and Scenario right after it.
func Rank(tb *table.Table) (*table.Table, []models.Warning) {
	var warnings []models.Warning
	order := make([]int, tb.Len())
	for i := range order {
		order[i] = i
	}

	if tb.HasColumn(models.ColumnCompositeScore) {
		scores, _ := tb.Floats(models.ColumnCompositeScore)
		sort.SliceStable(order, func(a, b int) bool {
			sa, sb := scores[order[a]], scores[order[b]]
			if math.IsNaN(sb) {
				return !math.IsNaN(sa)
			}
			if math.IsNaN(sa) {
				return false
			}
			return sa > sb
		})
	} else {
		warnings = append(warnings, models.Warning{
			Kind:   models.WarnSkippedFilter,
			Column: models.ColumnCompositeScore,
			Detail: "sort column not found, keeping input order",
		})
	}

	ranked := tb.Select(order).DropColumns(models.ColumnRank)
	ranks := make([]string, ranked.Len())
	for i := range ranks {
		ranks[i] = strconv.Itoa(i + 1)
	}
	ranked = ranked.WithColumn(models.ColumnRank, ranks, 0)
	if ranked.HasColumn(models.ColumnScenario) {
		ranked = ranked.MoveColumn(models.ColumnScenario, 1)
	}
	return ranked, warnings
}
