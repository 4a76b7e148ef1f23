// Package ranking scores, filters and ranks aggregated strategy metrics.
package ranking

import (
	"fmt"
	"math"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Weight is the contribution of one standardized metric to the composite score.
type Weight struct {
	Metric string
	Weight float64
}

// CompositeWeights are applied in this order. Drawdown duration is negative: shorter is better.
var CompositeWeights = []Weight{
	{Metric: models.MetricSortinoRatio, Weight: 0.30},
	{Metric: models.MetricRecoveryFactor, Weight: 0.25},
	{Metric: models.MetricProfitFactor, Weight: 0.20},
	{Metric: models.MetricMaxDrawdownDuration, Weight: -0.15},
	{Metric: models.MetricLogTradeCount, Weight: 0.10},
}

var ratioMetrics = []string{
	models.MetricSortinoRatio,
	models.MetricRecoveryFactor,
	models.MetricProfitFactor,
}

// ScoreResult is the scored table together with the intermediate columns behind it.
type ScoreResult struct {
	Table    *table.Table
	Derived  map[string][]float64
	ZScores  map[string][]float64
	Scores   []float64
	Warnings []models.Warning
}

// Score appends CompositeScore to tb. It is pure: the same table always yields the same
// scores regardless of row order within the statistics.
func Score(tb *table.Table) (*ScoreResult, error) {
	var missing []string
	for _, col := range models.RequiredMetrics {
		if !tb.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &models.ConfigurationError{Table: "summary", Missing: missing}
	}

	res := &ScoreResult{
		Derived: make(map[string][]float64, len(CompositeWeights)),
		ZScores: make(map[string][]float64, len(CompositeWeights)),
	}

	raw := make(map[string][]float64, len(models.RequiredMetrics))
	for _, col := range models.RequiredMetrics {
		values, failed := tb.Floats(col)
		if failed > 0 {
			res.warn(models.WarnCoercion, col, failed, fmt.Sprintf("%d non-numeric values treated as missing", failed))
		}
		raw[col] = values
	}

	for _, col := range ratioMetrics {
		values := raw[col]
		infs, nans := 0, 0
		for i, v := range values {
			if math.IsInf(v, 0) {
				infs++
				v = math.NaN()
			}
			if math.IsNaN(v) {
				nans++
				v = 0
			}
			values[i] = v
		}
		if infs > 0 {
			res.warn(models.WarnInfiniteValue, col, infs, fmt.Sprintf("replaced %d infinite values with missing", infs))
		}
		if nans > 0 {
			res.warn(models.WarnMissingFilled, col, nans, fmt.Sprintf("filled %d missing values with 0", nans))
		}
		res.Derived[col] = values
	}
	res.Derived[models.MetricMaxDrawdownDuration] = raw[models.MetricMaxDrawdownDuration]
	res.Derived[models.MetricLogTradeCount] = logTradeCount(raw[models.MetricTradeCount], res)

	scores := make([]float64, tb.Len())
	for _, w := range CompositeWeights {
		values, ok := res.Derived[w.Metric]
		if !ok {
			res.warn(models.WarnMissingFilled, "z_"+w.Metric, tb.Len(), "z-score column not computed, contributes 0")
			continue
		}
		z := res.zscore(w.Metric, values)
		res.ZScores[w.Metric] = z
		for i := range scores {
			scores[i] += z[i] * w.Weight
		}
	}

	res.Scores = scores
	res.Table = tb.WithFloatColumn(models.ColumnCompositeScore, scores)
	return res, nil
}

func logTradeCount(counts []float64, res *ScoreResult) []float64 {
	out := make([]float64, len(counts))
	filled := 0
	for i, c := range counts {
		if math.IsNaN(c) {
			filled++
			c = 0
		}
		out[i] = math.Log(math.Max(c, 0) + 1)
	}
	if filled > 0 {
		res.warn(models.WarnMissingFilled, models.MetricTradeCount, filled, fmt.Sprintf("filled %d missing values with 0", filled))
	}
	return out
}

// zscore standardizes values. Degenerate columns contribute zero for every row.
func (res *ScoreResult) zscore(name string, values []float64) []float64 {
	z := make([]float64, len(values))
	mean, std, ok := meanStd(values)
	if !ok || std == 0 {
		res.warn(models.WarnDegenerateStatistic, name, len(values),
			fmt.Sprintf("mean=%v std=%v, z-scores set to 0", mean, std))
		return z
	}
	filled := 0
	for i, v := range values {
		if math.IsNaN(v) {
			filled++
			continue
		}
		z[i] = (v - mean) / std
	}
	if filled > 0 {
		res.warn(models.WarnMissingFilled, "z_"+name, filled, fmt.Sprintf("filled %d missing z-scores with 0", filled))
	}
	return z
}

func (res *ScoreResult) warn(kind models.WarningKind, column string, count int, detail string) {
	res.Warnings = append(res.Warnings, models.Warning{Kind: kind, Column: column, Count: count, Detail: detail})
}
