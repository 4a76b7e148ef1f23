package join

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

func rankedTable(rows ...[]string) *table.Table {
	return table.New([]string{"Rank", "Scenario", "traderId", "CompositeScore"}, rows)
}

func setupTable(rows ...[]string) *table.Table {
	return table.New([]string{"traderid", "scenario", "Symbol", "stop"}, rows)
}

func TestJoinOrdersByRank(t *testing.T) {
	ranked := rankedTable(
		[]string{"1", "s_b", "7", "2.0"},
		[]string{"2", "s_a", "1", "1.0"},
		[]string{"3", "s_a", "7", "0.5"},
	)
	setups := setupTable(
		[]string{"1", "s_a", "EURUSD", "10"},
		[]string{"7", "s_a", "EURUSD", "20"},
		[]string{"7", "s_b", "EURUSD", "30"},
	)

	joined, err := Join(ranked, setups)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rank", "traderid", "scenario", "Symbol", "stop"}, joined.Table.Columns())
	assert.Equal(t, []string{"1", "2", "3"}, joined.Table.Strings("Rank"))
	assert.Equal(t, []string{"30", "10", "20"}, joined.Table.Strings("stop"))
	assert.Equal(t, []int{1, 2, 3}, joined.Ranks)
}

func TestJoinCaseMismatchIsFatal(t *testing.T) {
	ranked := rankedTable([]string{"1", "s_x", "1", "1.0"})
	setups := setupTable([]string{"1", "s_X", "EURUSD", "10"})

	joined, err := Join(ranked, setups)
	require.Error(t, err)
	assert.Nil(t, joined)
	assert.True(t, errors.Is(err, models.ErrJoinConsistency))

	var jerr *models.JoinConsistencyError
	require.True(t, errors.As(err, &jerr))
	assert.Equal(t, []models.JoinKey{{Scenario: "s_X", TraderID: "1"}}, jerr.Unmatched)
}

func TestJoinReportsEveryUnmatchedKey(t *testing.T) {
	ranked := rankedTable([]string{"1", "s_a", "1", "1.0"})
	setups := setupTable(
		[]string{"2", "s_a", "EURUSD", "10"},
		[]string{"1", "s_a", "EURUSD", "10"},
		[]string{"1", "s_b", "EURUSD", "10"},
	)

	_, err := Join(ranked, setups)
	var jerr *models.JoinConsistencyError
	require.True(t, errors.As(err, &jerr))
	assert.Len(t, jerr.Unmatched, 2)
}

func TestJoinRejectsDuplicateRankedKeys(t *testing.T) {
	ranked := rankedTable(
		[]string{"1", "s_a", "1", "1.0"},
		[]string{"2", "s_a", "1", "0.5"},
	)
	_, err := Join(ranked, setupTable([]string{"1", "s_a", "EURUSD", "10"}))

	var jerr *models.JoinConsistencyError
	require.True(t, errors.As(err, &jerr))
	assert.Equal(t, []models.JoinKey{{Scenario: "s_a", TraderID: "1"}}, jerr.Duplicates)
}

func TestJoinRejectsDuplicateSetupKeys(t *testing.T) {
	ranked := rankedTable(
		[]string{"1", "s_a", "1", "1.0"},
		[]string{"2", "s_a", "2", "0.5"},
	)
	setups := setupTable(
		[]string{"1", "s_a", "EURUSD", "10"},
		[]string{"1", "s_a", "EURUSD", "11"},
		[]string{"2", "s_a", "EURUSD", "20"},
	)

	joined, err := Join(ranked, setups)
	assert.Nil(t, joined)
	assert.True(t, errors.Is(err, models.ErrJoinConsistency))

	var jerr *models.JoinConsistencyError
	require.True(t, errors.As(err, &jerr))
	assert.Equal(t, []models.JoinKey{{Scenario: "s_a", TraderID: "1"}}, jerr.Duplicates)
	assert.Empty(t, jerr.Unmatched)
}

func TestJoinResolvesKeyColumnsCaseInsensitively(t *testing.T) {
	ranked := table.New([]string{"Rank", "scenario", "TraderID"}, [][]string{{"1", "s_a", "9"}})
	setups := table.New([]string{"TraderId", "Scenario"}, [][]string{{"9", "s_a"}})

	joined, err := Join(ranked, setups)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, joined.Table.Strings("Rank"))
}

func TestJoinMissingKeyColumns(t *testing.T) {
	_, err := Join(table.New([]string{"Rank", "Scenario"}, nil), setupTable())
	assert.True(t, errors.Is(err, models.ErrConfiguration))

	_, err = Join(rankedTable(), table.New([]string{"traderid"}, nil))
	assert.True(t, errors.Is(err, models.ErrConfiguration))
}

func TestJoinEmptySetups(t *testing.T) {
	joined, err := Join(rankedTable([]string{"1", "s_a", "1", "1.0"}), setupTable())
	require.NoError(t, err)
	assert.Equal(t, 0, joined.Table.Len())
	assert.Equal(t, "Rank", joined.Table.Columns()[0])
}

func TestExcludeFilteredKeepsUnknownKeys(t *testing.T) {
	scored := table.New([]string{"Scenario", "traderId"}, [][]string{
		{"s_a", "1"},
		{"s_a", "2"},
	})
	ranked := rankedTable([]string{"1", "s_a", "1", "1.0"})
	setups := setupTable(
		[]string{"1", "s_a", "EURUSD", "10"},
		[]string{"2", "s_a", "EURUSD", "20"},
		[]string{"1", "s_A", "EURUSD", "30"},
	)

	kept, dropped := ExcludeFiltered(setups, scored, ranked)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"10", "30"}, kept.Strings("stop"))

	_, err := Join(ranked, kept)
	assert.True(t, errors.Is(err, models.ErrJoinConsistency))
}

func TestVerifyKeyAgreement(t *testing.T) {
	summary := []models.ScenarioKey{{Symbol: "EURUSD", Scenario: "s_a"}, {Symbol: "EURUSD", Scenario: "s_x"}}
	setup := []models.ScenarioKey{{Symbol: "EURUSD", Scenario: "s_a"}, {Symbol: "EURUSD", Scenario: "s_X"}, {Symbol: "EURUSD", Scenario: "s_X"}}

	agreement := VerifyKeyAgreement(summary, setup)
	assert.False(t, agreement.Agree())
	assert.Equal(t, []models.ScenarioKey{{Symbol: "EURUSD", Scenario: "s_x"}}, agreement.OnlySummary)
	assert.Equal(t, []models.ScenarioKey{{Symbol: "EURUSD", Scenario: "s_X"}}, agreement.OnlySetup)

	assert.True(t, VerifyKeyAgreement(summary, summary).Agree())
}
