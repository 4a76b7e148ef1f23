package ranking

import (
	"fmt"
	"math"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// FilterConfig holds the strategy acceptance thresholds.
type FilterConfig struct {
	// QuantileThreshold keeps rows at or above this CompositeScore quantile. 0 disables it.
	QuantileThreshold float64 `json:"quantile_threshold"`
	MinProfitFactor   float64 `json:"min_profit_factor"`
	MaxDrawdownRatio  float64 `json:"max_drawdown_ratio"`
}

// DefaultFilterConfig returns the production thresholds.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		QuantileThreshold: 0.90,
		MinProfitFactor:   1.2,
		MaxDrawdownRatio:  0.5,
	}
}

// Validate checks the threshold ranges.
func (c FilterConfig) Validate() error {
	if math.IsNaN(c.QuantileThreshold) || c.QuantileThreshold < 0 || c.QuantileThreshold > 1 {
		return fmt.Errorf("quantile threshold must be within [0, 1], got %v", c.QuantileThreshold)
	}
	if math.IsNaN(c.MinProfitFactor) || math.IsNaN(c.MaxDrawdownRatio) {
		return fmt.Errorf("filter thresholds must be numbers")
	}
	return nil
}

// FilterStep records what one filter did.
type FilterStep struct {
	Name      string  `json:"name"`
	Before    int     `json:"before"`
	After     int     `json:"after"`
	Threshold float64 `json:"threshold"`
	Skipped   bool    `json:"skipped"`
}

// FilterResult is the filtered table and a trace of each step.
type FilterResult struct {
	Table    *table.Table
	Steps    []FilterStep
	Warnings []models.Warning
}

// Filter applies the quantile, profit factor and drawdown ratio filters in that order.
// Each quantile is computed on the rows that survived the previous step.
func Filter(tb *table.Table, cfg FilterConfig) (*FilterResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res := &FilterResult{Table: tb}
	if tb.IsEmpty() {
		return res, nil
	}
	res.byQuantile(cfg.QuantileThreshold)
	res.byProfitFactor(cfg.MinProfitFactor)
	res.byDrawdownRatio(cfg.MaxDrawdownRatio)
	return res, nil
}

func (res *FilterResult) byQuantile(q float64) {
	const name = "composite_quantile"
	if q <= 0 {
		n := res.Table.Len()
		res.Steps = append(res.Steps, FilterStep{Name: name, Before: n, After: n, Skipped: true})
		return
	}
	if !res.Table.HasColumn(models.ColumnCompositeScore) {
		res.skip(name, q, "CompositeScore column not found")
		return
	}
	scores, _ := res.Table.Floats(models.ColumnCompositeScore)
	threshold, ok := quantile(scores, q)
	if !ok {
		res.skip(name, q, "CompositeScore has no numeric values")
		return
	}
	res.apply(name, threshold, func(i int) bool {
		return scores[i] >= threshold
	})
}

func (res *FilterResult) byProfitFactor(min float64) {
	const name = "min_profit_factor"
	if !res.Table.HasColumn(models.MetricProfitFactor) {
		res.skip(name, min, "profit_factor column not found")
		return
	}
	pf, _ := res.Table.Floats(models.MetricProfitFactor)
	res.apply(name, min, func(i int) bool {
		v := pf[i]
		if math.IsNaN(v) {
			v = 0
		}
		return v >= min
	})
}

func (res *FilterResult) byDrawdownRatio(ratio float64) {
	const name = "max_drawdown_ratio"
	if !res.Table.HasColumn(models.MetricMaxDrawdown) || !res.Table.HasColumn(models.MetricTotalProfit) {
		res.skip(name, ratio, "max_drawdown or totalprofit column not found")
		return
	}
	dd, _ := res.Table.Floats(models.MetricMaxDrawdown)
	profit, _ := res.Table.Floats(models.MetricTotalProfit)
	res.apply(name, ratio, func(i int) bool {
		if math.IsNaN(dd[i]) || math.IsNaN(profit[i]) || profit[i] <= 0 {
			return true
		}
		return !(dd[i] > ratio*profit[i])
	})
}

func (res *FilterResult) apply(name string, threshold float64, keep func(i int) bool) {
	before := res.Table.Len()
	if before > 0 {
		res.Table = res.Table.Where(keep)
	}
	res.Steps = append(res.Steps, FilterStep{Name: name, Before: before, After: res.Table.Len(), Threshold: threshold})
}

func (res *FilterResult) skip(name string, threshold float64, detail string) {
	n := res.Table.Len()
	res.Steps = append(res.Steps, FilterStep{Name: name, Before: n, After: n, Threshold: threshold, Skipped: true})
	res.Warnings = append(res.Warnings, models.Warning{Kind: models.WarnSkippedFilter, Column: name, Detail: detail})
}
