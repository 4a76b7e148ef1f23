package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Output file names inside the output directory.
const (
	RankedSummaryFile    = "ranked_summary.csv"
	FullSummaryFile      = "full_summary.csv"
	RankedSetupsFile     = "ranked_setups.csv"
	SimplifiedSetupsFile = "setups_simplified.csv"
	ArtifactsDir         = "artifacts"
)

// SummaryLayout orders a ranked summary as Rank, Scenario, traderId, metrics..., CompositeScore.
func SummaryLayout(tb *table.Table) *table.Table {
	out := tb
	if col, ok := out.Find(models.ColumnTraderID); ok {
		out = out.MoveColumn(col, 0)
	}
	if out.HasColumn(models.ColumnScenario) {
		out = out.MoveColumn(models.ColumnScenario, 0)
	}
	if out.HasColumn(models.ColumnRank) {
		out = out.MoveColumn(models.ColumnRank, 0)
	}
	if out.HasColumn(models.ColumnCompositeScore) {
		out = out.MoveColumn(models.ColumnCompositeScore, out.Width())
	}
	return out
}

// SetupLayout orders joined setups as Rank, scenario, traderid, parameters....
func SetupLayout(tb *table.Table) *table.Table {
	out := tb
	for _, name := range []string{models.ColumnSetupTraderID, models.ColumnSetupScenario, models.ColumnRank} {
		if col, ok := out.Find(name); ok {
			out = out.MoveColumn(col, 0)
		}
	}
	return out
}

// WriteRankedSummary writes the rounded ranked summary.
func WriteRankedSummary(w io.Writer, ranked *table.Table) error {
	return Round(SummaryLayout(ranked), DecimalPlaces).WriteCSV(w)
}

// WriteRankedSetups writes the joined setups in rank order.
func WriteRankedSetups(w io.Writer, setups *table.Table) error {
	return SetupLayout(setups).WriteCSV(w)
}

// SimplifiedColumns returns traderid followed by the setup parameters.
func SimplifiedColumns() []string {
	return append([]string{models.ColumnSetupTraderID}, models.SetupParameters...)
}

// WriteSimplifiedSetups writes a leading unlabeled 0-based sequence column followed by
// traderid and the setup parameters, every value quoted.
func WriteSimplifiedSetups(w io.Writer, setups *table.Table) error {
	cols := SimplifiedColumns()
	resolved := make([]string, len(cols))
	var missing []string
	for i, c := range cols {
		found, ok := setups.Find(c)
		if !ok {
			missing = append(missing, c)
			continue
		}
		resolved[i] = found
	}
	if len(missing) > 0 {
		return &models.ConfigurationError{Table: "ranked setups", Missing: missing}
	}

	bw := bufio.NewWriter(w)
	header := make([]string, 0, len(cols)+1)
	header = append(header, "")
	for _, c := range cols {
		header = append(header, quote(c))
	}
	if _, err := fmt.Fprintln(bw, strings.Join(header, ",")); err != nil {
		return err
	}

	for i := 0; i < setups.Len(); i++ {
		fields := make([]string, 0, len(cols)+1)
		fields = append(fields, strconv.Itoa(i))
		for _, c := range resolved {
			fields = append(fields, quote(setups.Cell(i, c)))
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
