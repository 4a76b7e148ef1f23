package aggregate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/scenario"
)

const (
	summaryHeader = "TraderID,sortino_ratio,recovery_factor,profit_factor,max_drawdown_duration,tradecount\n"
	setupHeader   = "TraderID,DayOfWeek,HourOfDay_utc,Stop,Limit,TickOffset,TradeDuration,OutOfTime\n"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func locate(t *testing.T, root string) ([]scenario.Located, []scenario.Located) {
	t.Helper()
	loc, err := scenario.NewLocator(scenario.LocatorConfig{Root: root}, nil)
	require.NoError(t, err)
	summaries, err := loc.Summaries(context.Background())
	require.NoError(t, err)
	setups, err := loc.Setups(context.Background())
	require.NoError(t, err)
	return summaries, setups
}

func TestSummariesInsertScenarioAfterTrader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc-1mF/trades/s_a/summary.csv", summaryHeader+"1,1,1,1,1,1\n2,2,2,2,2,2\n")
	writeFile(t, root, "btc-1mF/trades/s_b/summary.csv", summaryHeader+"1,3,3,3,3,3\n")
	summaries, _ := locate(t, root)

	res, err := NewAggregator(2, nil).Summaries(context.Background(), summaries)
	require.NoError(t, err)

	tb := res.Table
	assert.Equal(t, []string{"TraderID", "Scenario", "sortino_ratio", "recovery_factor", "profit_factor", "max_drawdown_duration", "tradecount"}, tb.Columns())
	require.Equal(t, 3, tb.Len())
	assert.Equal(t, []string{"s_a", "s_a", "s_b"}, tb.Strings("Scenario"))
	assert.Equal(t, 2, res.Used)
}

func TestSummariesScenarioFirstWithoutTrader(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/summary.csv", "sortino_ratio\n1\n")
	summaries, _ := locate(t, root)

	res, err := NewAggregator(1, nil).Summaries(context.Background(), summaries)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scenario", "sortino_ratio"}, res.Table.Columns())
}

func TestSummariesUnionColumns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/summary.csv", "traderId,a\n1,x\n")
	writeFile(t, root, "btc/trades/s_b/summary.csv", "traderId,b\n1,y\n")
	summaries, _ := locate(t, root)

	res, err := NewAggregator(1, nil).Summaries(context.Background(), summaries)
	require.NoError(t, err)
	assert.Equal(t, []string{"traderId", "Scenario", "a", "b"}, res.Table.Columns())
	assert.Equal(t, []string{"x", ""}, res.Table.Strings("a"))
}

func TestSummariesSkipEmptyFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/summary.csv", "")
	writeFile(t, root, "btc/trades/s_b/summary.csv", summaryHeader)
	writeFile(t, root, "btc/trades/s_c/summary.csv", summaryHeader+"1,1,1,1,1,1\n")
	summaries, _ := locate(t, root)

	res, err := NewAggregator(1, nil).Summaries(context.Background(), summaries)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Used)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, models.WarnEmptyFile, res.Warnings[0].Kind)
}

func TestSummariesAllEmptyIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/summary.csv", "")
	summaries, _ := locate(t, root)

	_, err := NewAggregator(1, nil).Summaries(context.Background(), summaries)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestSummariesNoFilesIsFatal(t *testing.T) {
	_, err := NewAggregator(1, nil).Summaries(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestSummariesUnparsableIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/summary.csv", summaryHeader+"1,1,1,1,1,1\n")
	writeFile(t, root, "btc/trades/s_b/summary.csv", "a,b\n1,\"unterminated\n")
	summaries, _ := locate(t, root)

	_, err := NewAggregator(1, nil).Summaries(context.Background(), summaries)
	var perr *models.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "btc/trades/s_b/summary.csv", perr.Path)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
	assert.NotErrorIs(t, err, models.ErrConfiguration)
}

func TestSummariesUnresolvedScenarioKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/summary.csv", "traderId\n7\n")
	summaries, _ := locate(t, root)

	res, err := NewAggregator(1, nil).Summaries(context.Background(), summaries)
	require.NoError(t, err)
	assert.Equal(t, []string{models.UnknownScenario}, res.Table.Strings("Scenario"))
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.WarnUnresolvedScenario, res.Warnings[0].Kind)
}

func TestSetupsNormalizeColumns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc-1mF/trades/s_a/setups.csv", setupHeader+"1,Mon,9,10,20,1,30,0\n")
	_, setups := locate(t, root)

	res, err := NewAggregator(1, nil).Setups(context.Background(), setups)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"traderid", "scenario", "Symbol", "dayofweek", "hourofday", "stop", "limit", "tickoffset", "tradeduration", "outoftime",
	}, res.Table.Columns())
	assert.Equal(t, "btc", res.Table.Cell(0, "Symbol"))
	assert.Equal(t, "s_a", res.Table.Cell(0, "scenario"))
	assert.Equal(t, "9", res.Table.Cell(0, "hourofday"))
}

func TestSetupsMissingParameterIsConfigurationError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/setups.csv", "traderid,dayofweek\n1,Mon\n")
	_, setups := locate(t, root)

	_, err := NewAggregator(1, nil).Setups(context.Background(), setups)
	var cerr *models.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Missing, "hourofday")
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestSetupsPartialParseFailureTolerated(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/setups.csv", setupHeader+"1,Mon,9,10,20,1,30,0\n")
	writeFile(t, root, "btc/trades/s_b/setups.csv", "a,b\n1,2,3\n")
	writeFile(t, root, "btc/trades/s_c/setups.csv", "")
	_, setups := locate(t, root)

	res, err := NewAggregator(1, nil).Setups(context.Background(), setups)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Used)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Table.Len())
}

func TestSetupsAllUnparsableIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_b/setups.csv", "a,b\n1,2,3\n")
	_, setups := locate(t, root)

	_, err := NewAggregator(1, nil).Setups(context.Background(), setups)
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

// Both aggregation passes must key the same logical scenario identically.
func TestSummaryAndSetupKeysAgree(t *testing.T) {
	root := t.TempDir()
	scenarios := []string{"s_-3000..-100..400___a", "s_X", "s_x", "s_1__2"}
	for _, s := range scenarios {
		writeFile(t, root, "btc-1mF/trades/"+s+"/summary.csv", summaryHeader+"1,1,1,1,1,1\n")
		writeFile(t, root, "btc-1mF/trades/"+s+"/setups.csv", setupHeader+"1,Mon,9,10,20,1,30,0\n")
	}
	summaries, setups := locate(t, root)
	agg := NewAggregator(4, nil)

	sum, err := agg.Summaries(context.Background(), summaries)
	require.NoError(t, err)
	set, err := agg.Setups(context.Background(), setups)
	require.NoError(t, err)

	assert.ElementsMatch(t, sum.Keys, set.Keys)
	assert.ElementsMatch(t, sum.Table.Strings("Scenario"), set.Table.Strings("scenario"))
}
