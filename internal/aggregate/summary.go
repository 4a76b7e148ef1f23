package aggregate

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/scenario"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Summaries concatenates every summary file, tagging rows with a Scenario column.
// Empty files are skipped; any file that fails to parse aborts the aggregation.
func (a *Aggregator) Summaries(ctx context.Context, files []scenario.Located) (*Result, error) {
	if len(files) == 0 {
		return nil, &models.EmptyInputError{Kind: "summary", Reason: "no summary files located"}
	}
	loads, err := a.readAll(ctx, files)
	if err != nil {
		return nil, err
	}

	res := &Result{Located: len(files)}
	var parts []*table.Table
	for i, f := range files {
		if loads[i].err != nil {
			return nil, loads[i].err
		}
		tb := loads[i].table
		if tb.IsEmpty() {
			res.Skipped++
			res.Warnings = append(res.Warnings, emptyFile(f))
			continue
		}
		if !f.Key.Resolved() {
			res.Warnings = append(res.Warnings, unresolved(f))
		}
		parts = append(parts, insertAfterTrader(tb, models.ColumnTraderID, models.ColumnScenario, f.Key.Scenario))
		res.Keys = append(res.Keys, f.Key)
		res.Used++
	}
	a.logWarnings(res.Warnings)

	if res.Used == 0 {
		return nil, &models.EmptyInputError{Kind: "summary", Reason: "every located summary file was empty"}
	}
	res.Table = table.Concat(parts...)
	a.logger.WithFields(logrus.Fields{
		"files":   res.Used,
		"skipped": res.Skipped,
		"rows":    res.Table.Len(),
	}).Info("Aggregated summary files")
	return res, nil
}
