// Package join lines aggregated setup rows up with the ranked summary.
package join

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/yourusername/scenario-ranker/internal/models"
	"github.com/yourusername/scenario-ranker/internal/table"
)

// Joined is the setup table in rank order with a leading Rank column.
type Joined struct {
	Table *table.Table
	Ranks []int
}

// Join attaches each setup row to the rank of its (scenario, traderid) pair in ranked.
// Every setup row must match exactly one ranked row and every key may appear once on each
// side; anything else is a JoinConsistencyError
// and no partial result is returned. Key column names are matched case-insensitively,
// key values exactly.
func Join(ranked, setups *table.Table) (*Joined, error) {
	lookup, err := buildLookup(ranked)
	if err != nil {
		return nil, err
	}

	scenarioCol, okS := setups.Find(models.ColumnSetupScenario)
	traderCol, okT := setups.Find(models.ColumnSetupTraderID)
	var missing []string
	if !okS {
		missing = append(missing, models.ColumnSetupScenario)
	}
	if !okT {
		missing = append(missing, models.ColumnSetupTraderID)
	}
	if len(missing) > 0 {
		return nil, &models.ConfigurationError{Table: "setup", Missing: missing}
	}

	ranks := make([]int, setups.Len())
	seen := make(map[models.JoinKey]int, setups.Len())
	var unmatched, duplicates []models.JoinKey
	for i := 0; i < setups.Len(); i++ {
		key := models.JoinKey{Scenario: setups.Cell(i, scenarioCol), TraderID: setups.Cell(i, traderCol)}
		seen[key]++
		if seen[key] == 2 {
			duplicates = append(duplicates, key)
		}
		rank, ok := lookup[key]
		if !ok {
			unmatched = append(unmatched, key)
			continue
		}
		ranks[i] = rank
	}
	if len(unmatched) > 0 || len(duplicates) > 0 {
		return nil, &models.JoinConsistencyError{Unmatched: unmatched, Duplicates: duplicates}
	}

	order := make([]int, setups.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranks[order[a]] < ranks[order[b]]
	})

	sortedRanks := make([]int, len(order))
	cells := make([]string, len(order))
	for i, o := range order {
		sortedRanks[i] = ranks[o]
		cells[i] = strconv.Itoa(ranks[o])
	}
	out := setups.
		DropColumns(models.ColumnRank).
		Select(order).
		WithColumn(models.ColumnRank, cells, 0)
	return &Joined{Table: out, Ranks: sortedRanks}, nil
}

// buildLookup maps (scenario, traderid) to rank. A key appearing twice in the ranked
// table cannot be joined unambiguously and is rejected.
func buildLookup(ranked *table.Table) (map[models.JoinKey]int, error) {
	var missing []string
	rankCol, okR := ranked.Find(models.ColumnRank)
	scenarioCol, okS := ranked.Find(models.ColumnScenario)
	traderCol, okT := ranked.Find(models.ColumnTraderID)
	if !okR {
		missing = append(missing, models.ColumnRank)
	}
	if !okS {
		missing = append(missing, models.ColumnScenario)
	}
	if !okT {
		missing = append(missing, models.ColumnTraderID)
	}
	if len(missing) > 0 {
		return nil, &models.ConfigurationError{Table: "ranked summary", Missing: missing}
	}

	lookup := make(map[models.JoinKey]int, ranked.Len())
	var duplicates []models.JoinKey
	for i := 0; i < ranked.Len(); i++ {
		key := models.JoinKey{Scenario: ranked.Cell(i, scenarioCol), TraderID: ranked.Cell(i, traderCol)}
		rank, err := strconv.Atoi(ranked.Cell(i, rankCol))
		if err != nil {
			return nil, fmt.Errorf("%w: ranked summary row %d has non-integer rank %q", models.ErrConfiguration, i, ranked.Cell(i, rankCol))
		}
		if _, dup := lookup[key]; dup {
			duplicates = append(duplicates, key)
			continue
		}
		lookup[key] = rank
	}
	if len(duplicates) > 0 {
		return nil, &models.JoinConsistencyError{Duplicates: duplicates}
	}
	return lookup, nil
}

// KeyAgreement lists scenario tokens seen by only one of the two aggregation passes.
type KeyAgreement struct {
	OnlySummary []models.ScenarioKey
	OnlySetup   []models.ScenarioKey
}

// Agree reports whether both passes saw the same scenario keys.
func (k KeyAgreement) Agree() bool {
	return len(k.OnlySummary) == 0 && len(k.OnlySetup) == 0
}

// VerifyKeyAgreement compares the scenario keys produced by the summary and setup passes.
func VerifyKeyAgreement(summaryKeys, setupKeys []models.ScenarioKey) KeyAgreement {
	inSummary := make(map[models.ScenarioKey]bool, len(summaryKeys))
	for _, k := range summaryKeys {
		inSummary[k] = true
	}
	inSetup := make(map[models.ScenarioKey]bool, len(setupKeys))
	for _, k := range setupKeys {
		inSetup[k] = true
	}
	var out KeyAgreement
	for _, k := range uniqueKeys(summaryKeys) {
		if !inSetup[k] {
			out.OnlySummary = append(out.OnlySummary, k)
		}
	}
	for _, k := range uniqueKeys(setupKeys) {
		if !inSummary[k] {
			out.OnlySetup = append(out.OnlySetup, k)
		}
	}
	return out
}

func uniqueKeys(keys []models.ScenarioKey) []models.ScenarioKey {
	seen := make(map[models.ScenarioKey]bool, len(keys))
	var out []models.ScenarioKey
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// ExcludeFiltered drops setup rows whose key belongs to a scored strategy that the
// filter removed. Keys the scored population never saw are kept, so a scenario token
// mismatch between the two passes still reaches Join and fails there.
func ExcludeFiltered(setups, scored, ranked *table.Table) (*table.Table, int) {
	scoredKeys := keySet(scored, models.ColumnScenario, models.ColumnTraderID)
	rankedKeys := keySet(ranked, models.ColumnScenario, models.ColumnTraderID)
	scenarioCol, okS := setups.Find(models.ColumnSetupScenario)
	traderCol, okT := setups.Find(models.ColumnSetupTraderID)
	if !okS || !okT {
		return setups, 0
	}
	kept := setups.Where(func(i int) bool {
		key := models.JoinKey{Scenario: setups.Cell(i, scenarioCol), TraderID: setups.Cell(i, traderCol)}
		return !scoredKeys[key] || rankedKeys[key]
	})
	return kept, setups.Len() - kept.Len()
}

func keySet(tb *table.Table, scenarioName, traderName string) map[models.JoinKey]bool {
	out := make(map[models.JoinKey]bool, tb.Len())
	scenarioCol, okS := tb.Find(scenarioName)
	traderCol, okT := tb.Find(traderName)
	if !okS || !okT {
		return out
	}
	for i := 0; i < tb.Len(); i++ {
		out[models.JoinKey{Scenario: tb.Cell(i, scenarioCol), TraderID: tb.Cell(i, traderCol)}] = true
	}
	return out
}
