package models

import "fmt"

// UnknownScenario is the token used when no extractor resolves a scenario.
const UnknownScenario = "unknown_scenario"

// ScenarioKey identifies one scenario of a symbol's parameter sweep.
type ScenarioKey struct {
	Symbol   string `json:"symbol"`
	Scenario string `json:"scenario"`
}

// Resolved reports whether the scenario token came from an extractor.
func (k ScenarioKey) Resolved() bool {
	return k.Scenario != UnknownScenario
}

func (k ScenarioKey) String() string {
	return fmt.Sprintf("%s/%s", k.Symbol, k.Scenario)
}

// JoinKey is the (scenario, traderid) pair used to line setups up with ranks.
type JoinKey struct {
	Scenario string `json:"scenario"`
	TraderID string `json:"trader_id"`
}

func (k JoinKey) String() string {
	return fmt.Sprintf("(%s, %s)", k.Scenario, k.TraderID)
}
