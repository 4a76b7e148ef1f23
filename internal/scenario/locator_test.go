package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/scenario-ranker/internal/models"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestLocatorFindsSummariesAndSetups(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc-1mF/trades/s_b/summary.csv", "traderId\n1\n")
	writeFile(t, root, "btc-1mF/trades/s_a/summary.csv", "traderId\n1\n")
	writeFile(t, root, "btc-1mF/trades/s_a/setups.csv", "traderid\n1\n")
	writeFile(t, root, "btc-1mF/trades/s_a/trades_1.csv", "x\n")

	loc, err := NewLocator(LocatorConfig{Root: root}, nil)
	require.NoError(t, err)

	summaries, err := loc.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, models.ScenarioKey{Symbol: "btc", Scenario: "s_a"}, summaries[0].Key)
	assert.Equal(t, models.ScenarioKey{Symbol: "btc", Scenario: "s_b"}, summaries[1].Key)

	setups, err := loc.Setups(context.Background())
	require.NoError(t, err)
	require.Len(t, setups, 1)
	assert.Equal(t, "s_a", setups[0].Key.Scenario)
	assert.Equal(t, "btc-1mF/trades/s_a/setups.csv", setups[0].Rel)
}

func TestLocatorUnknownScenarioIsKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc-1mF/summary.csv", "traderId\n1\n")

	loc, err := NewLocator(LocatorConfig{Root: root}, nil)
	require.NoError(t, err)

	summaries, err := loc.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, models.UnknownScenario, summaries[0].Key.Scenario)
	assert.False(t, summaries[0].Key.Resolved())
}

func TestLocatorZeroMatches(t *testing.T) {
	loc, err := NewLocator(LocatorConfig{Root: t.TempDir()}, nil)
	require.NoError(t, err)

	summaries, err := loc.Summaries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestLocatorSymbolOverride(t *testing.T) {
	loc, err := NewLocator(LocatorConfig{Root: "unused", Symbol: "eth"}, nil)
	require.NoError(t, err)

	key, via := loc.Key("trades/s_q/summary.csv")
	assert.Equal(t, models.ScenarioKey{Symbol: "eth", Scenario: "s_q"}, key)
	assert.Equal(t, "marker_dir", via)
}

func TestLocatorSkipsExcludedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc-1mF/trades/s_a/summary.csv", "traderId\n1\n")
	writeFile(t, root, "btc-1mF/trades/s_a/setup.csv", "traderid\n1\n")
	writeFile(t, root, "output/ranked_summary.csv", "Rank\n1\n")
	writeFile(t, root, "output/setups_simplified.csv", ",\"traderid\"\n")

	loc, err := NewLocator(LocatorConfig{Root: root, Exclude: []string{filepath.Join(root, "output")}}, nil)
	require.NoError(t, err)

	summaries, err := loc.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "btc-1mF/trades/s_a/summary.csv", summaries[0].Rel)

	setups, err := loc.Setups(context.Background())
	require.NoError(t, err)
	require.Len(t, setups, 1)
}

func TestLocatorCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "btc/trades/s_a/summary.csv", "traderId\n1\n")
	loc, err := NewLocator(LocatorConfig{Root: root}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loc.Summaries(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
