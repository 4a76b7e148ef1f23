package models

// Column names shared across stages.
const (
	ColumnRank           = "Rank"
	ColumnScenario       = "Scenario"
	ColumnSetupScenario  = "scenario"
	ColumnSymbol         = "Symbol"
	ColumnTraderID       = "traderId"
	ColumnSetupTraderID  = "traderid"
	ColumnCompositeScore = "CompositeScore"
)

// Raw metric columns read from the summary tables.
const (
	MetricSortinoRatio        = "sortino_ratio"
	MetricRecoveryFactor      = "recovery_factor"
	MetricProfitFactor        = "profit_factor"
	MetricMaxDrawdownDuration = "max_drawdown_duration"
	MetricTradeCount          = "tradecount"
	MetricLogTradeCount       = "log_tradecount"
	MetricMaxDrawdown         = "max_drawdown"
	MetricTotalProfit         = "totalprofit"
)

// RequiredMetrics must be present for the composite score.
var RequiredMetrics = []string{
	MetricSortinoRatio,
	MetricRecoveryFactor,
	MetricProfitFactor,
	MetricMaxDrawdownDuration,
	MetricTradeCount,
}

// Setup parameter columns, lowercased.
const (
	ParamDayOfWeek     = "dayofweek"
	ParamHourOfDay     = "hourofday"
	ParamStop          = "stop"
	ParamLimit         = "limit"
	ParamTickOffset    = "tickoffset"
	ParamTradeDuration = "tradeduration"
	ParamOutOfTime     = "outoftime"
)

// SetupParameters are required in every setup table, in export order.
var SetupParameters = []string{
	ParamDayOfWeek,
	ParamHourOfDay,
	ParamStop,
	ParamLimit,
	ParamTickOffset,
	ParamTradeDuration,
	ParamOutOfTime,
}
