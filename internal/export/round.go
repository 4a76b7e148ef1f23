package export

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// DecimalPlaces is the precision of rounded metric cells in the ranked summary.
const DecimalPlaces = 4

var keepExact = []string{"id", "count", "duration", "year"}

// RoundsColumn reports whether cells of the named column are rounded on export.
// Identifiers, counts, durations, years and rank are written as read.
func RoundsColumn(name string) bool {
	lc := strings.ToLower(name)
	if lc == strings.ToLower(models.ColumnRank) {
		return false
	}
	for _, s := range keepExact {
		if strings.Contains(lc, s) {
			return false
		}
	}
	return true
}

// Round rounds every numeric cell of rounded columns to places decimals. Cells that are
// empty or non-numeric, including inf and NaN, are left untouched.
func Round(tb *table.Table, places int32) *table.Table {
	out := tb
	for _, col := range tb.Columns() {
		if !RoundsColumn(col) {
			continue
		}
		cells := tb.Strings(col)
		changed := false
		for i, cell := range cells {
			d, err := decimal.NewFromString(strings.TrimSpace(cell))
			if err != nil {
				continue
			}
			cells[i] = d.Round(places).String()
			changed = true
		}
		if changed {
			out = out.WithColumn(col, cells, -1)
		}
	}
	return out
}
