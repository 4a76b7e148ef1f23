package scenario

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerDirExtractor(t *testing.T) {
	e := MarkerDirExtractor("trades")

	token, ok := e.Extract(NewPathInfo("btc-1mF/trades/s_-3000..-100___a/summary.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_-3000..-100___a", token)

	_, ok = e.Extract(NewPathInfo("btc-1mF/trades/summary.csv"))
	assert.False(t, ok, "marker directly above the file carries no token")
}

func TestPrefixFileExtractor(t *testing.T) {
	e := PrefixFileExtractor("summary_", "setup_")

	token, ok := e.Extract(NewPathInfo("btc-1mF/out/summary_s_x.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_x", token)

	_, ok = e.Extract(NewPathInfo("btc-1mF/out/summary_.csv"))
	assert.False(t, ok)

	_, ok = e.Extract(NewPathInfo("btc-1mF/out/report.csv"))
	assert.False(t, ok)
}

func TestPatternExtractor(t *testing.T) {
	e := PatternExtractor(regexp.MustCompile(DefaultPattern))

	token, ok := e.Extract(NewPathInfo("eth-5m/archive/s_1..2___b/x/summary.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_1..2___b", token)

	token, ok = e.Extract(NewPathInfo("eth-5m/s_-3000..-100..400/summary.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_-3000..-100..400", token)

	token, ok = e.Extract(NewPathInfo("eth-5m/s_9.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_9", token)
}

func TestChainFirstMatchWins(t *testing.T) {
	chain, err := NewChain(ChainMarkerThenPrefix, ChainOptions{})
	require.NoError(t, err)

	token, via, ok := chain.Extract(NewPathInfo("btc-1mF/trades/s_dir/summary_s_file.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_dir", token)
	assert.Equal(t, "marker_dir", via)

	chain, err = NewChain(ChainPrefixThenMarker, ChainOptions{})
	require.NoError(t, err)
	token, via, ok = chain.Extract(NewPathInfo("btc-1mF/trades/s_dir/summary_s_file.csv"))
	require.True(t, ok)
	assert.Equal(t, "s_file", token)
	assert.Equal(t, "prefix_file", via)
}

func TestNewChainErrors(t *testing.T) {
	_, err := NewChain("bogus", ChainOptions{})
	assert.Error(t, err)

	_, err = NewChain(ChainPattern, ChainOptions{Pattern: "s_.*"})
	assert.Error(t, err, "pattern without capture group")

	_, err = NewChain(ChainPattern, ChainOptions{Pattern: "("})
	assert.Error(t, err)
}
