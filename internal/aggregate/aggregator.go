// Package aggregate concatenates per-scenario summary and setup tables into one table each.
package aggregate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/scenario-ranker/internal/logger"
	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/scenario"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Result is an aggregated table plus the bookkeeping of how it was built.
type Result struct {
	Table    *table.Table
	Located  int
	Used     int
	Skipped  int
	Keys     []models.ScenarioKey
	Warnings []models.Warning
}

// Aggregator reads located scenario files. Reads may run in parallel; output always
// follows the locator's order.
type Aggregator struct {
	workers int
	logger  *logrus.Entry
}

// NewAggregator creates an aggregator reading up to workers files at once.
func NewAggregator(workers int, log *logrus.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		workers: workers,
		logger:  logger.OrDiscard(log).WithField("component", "aggregator"),
	}
}

type loaded struct {
	table *table.Table
	err   error
}

// readAll loads every file. Parse failures are returned per file; only context errors abort.
func (a *Aggregator) readAll(ctx context.Context, files []scenario.Located) ([]loaded, error) {
	out := make([]loaded, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tb, err := table.ReadCSVFile(f.Path)
			if err != nil {
				out[i] = loaded{err: &models.ParseError{Path: f.Rel, Err: err}}
				return nil
			}
			out[i] = loaded{table: tb}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func unresolved(f scenario.Located) models.Warning {
	return models.Warning{
		Kind:   models.WarnUnresolvedScenario,
		Path:   f.Rel,
		Detail: fmt.Sprintf("no extractor matched, keyed as %s", models.UnknownScenario),
	}
}

func emptyFile(f scenario.Located) models.Warning {
	return models.Warning{
		Kind:   models.WarnEmptyFile,
		Path:   f.Rel,
		Detail: "file has no rows, skipped",
	}
}

// insertAfterTrader places a constant column right after the trader id column, or first.
func insertAfterTrader(tb *table.Table, traderCol, name, value string) *table.Table {
	at := 0
	if col, ok := tb.Find(traderCol); ok {
		at = tb.ColumnIndex(col) + 1
	}
	return tb.WithColumn(name, table.Fill(value, tb.Len()), at)
}

func (a *Aggregator) logWarnings(warnings []models.Warning) {
	for _, w := range warnings {
		logger.LogWarning(a.logger, w)
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
