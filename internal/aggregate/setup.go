package aggregate

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/scenario"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Setups concatenates every setup file. Column names are lowercased, the first hourofday*
// column becomes hourofday, and each row is tagged with lowercase scenario and Symbol.
// Files that fail to parse are skipped unless every file fails.
func (a *Aggregator) Setups(ctx context.Context, files []scenario.Located) (*Result, error) {
	if len(files) == 0 {
		return nil, &models.EmptyInputError{Kind: "setup", Reason: "no setup files located"}
	}
	loads, err := a.readAll(ctx, files)
	if err != nil {
		return nil, err
	}

	res := &Result{Located: len(files)}
	var parts []*table.Table
	failed := 0
	for i, f := range files {
		if perr := loads[i].err; perr != nil {
			failed++
			res.Warnings = append(res.Warnings, models.Warning{
				Kind:   models.WarnUnparsableFile,
				Path:   f.Rel,
				Detail: perr.Error(),
			})
			continue
		}
		tb := normalizeSetup(loads[i].table)
		if tb.IsEmpty() {
			res.Skipped++
			res.Warnings = append(res.Warnings, emptyFile(f))
			continue
		}
		if err := validateSetup(tb, f.Rel); err != nil {
			return nil, err
		}
		if !f.Key.Resolved() {
			res.Warnings = append(res.Warnings, unresolved(f))
		}
		tb = insertAfterTrader(tb, models.ColumnSetupTraderID, models.ColumnSetupScenario, f.Key.Scenario)
		tb = tb.WithColumn(models.ColumnSymbol, table.Fill(f.Key.Symbol, tb.Len()), tb.ColumnIndex(models.ColumnSetupScenario)+1)
		parts = append(parts, tb)
		res.Keys = append(res.Keys, f.Key)
		res.Used++
	}
	a.logWarnings(res.Warnings)

	if failed == len(files) {
		return nil, &models.EmptyInputError{Kind: "setup", Reason: "every located setup file failed to parse"}
	}
	if res.Used == 0 {
		return nil, &models.EmptyInputError{Kind: "setup", Reason: "every parsable setup file was empty"}
	}
	res.Table = table.Concat(parts...)
	a.logger.WithFields(logrus.Fields{
		"files":   res.Used,
		"skipped": res.Skipped,
		"failed":  failed,
		"rows":    res.Table.Len(),
	}).Info("Aggregated setup files")
	return res, nil
}

func normalizeSetup(tb *table.Table) *table.Table {
	tb = tb.RenameColumns(lower)
	if tb.HasColumn(models.ParamHourOfDay) {
		return tb
	}
	if col, ok := tb.FindPrefix(models.ParamHourOfDay); ok {
		return tb.RenameColumns(func(c string) string {
			if c == col {
				return models.ParamHourOfDay
			}
			return c
		})
	}
	return tb
}

func validateSetup(tb *table.Table, path string) error {
	var missing []string
	for _, col := range append([]string{models.ColumnSetupTraderID}, models.SetupParameters...) {
		if !tb.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &models.ConfigurationError{Table: "setup file " + path, Missing: missing}
}
