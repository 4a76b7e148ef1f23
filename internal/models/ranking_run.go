package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// RankingRun represents one persisted pipeline invocation
type RankingRun struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Symbol         string          `db:"symbol" json:"symbol"`
	Status         string          `db:"status" json:"status"`
	StartedAt      time.Time       `db:"started_at" json:"started_at"`
	FinishedAt     time.Time       `db:"finished_at" json:"finished_at"`
	SummaryFiles   int             `db:"summary_files" json:"summary_files"`
	SetupFiles     int             `db:"setup_files" json:"setup_files"`
	ScoredRows     int             `db:"scored_rows" json:"scored_rows"`
	RankedRows     int             `db:"ranked_rows" json:"ranked_rows"`
	JoinedSetups   int             `db:"joined_setups" json:"joined_setups"`
	WarningCount   int             `db:"warning_count" json:"warning_count"`
	FilterSettings json.RawMessage `db:"filter_settings" json:"filter_settings"`
	Error          string          `db:"error" json:"error,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// RankedStrategy is one ranked trader/scenario persisted with its run
type RankedStrategy struct {
	RunID          uuid.UUID       `db:"run_id" json:"run_id"`
	Rank           int             `db:"rank" json:"rank"`
	Symbol         string          `db:"symbol" json:"symbol"`
	Scenario       string          `db:"scenario" json:"scenario"`
	TraderID       string          `db:"trader_id" json:"trader_id"`
	CompositeScore float64         `db:"composite_score" json:"composite_score"`
	Metrics        json.RawMessage `db:"metrics" json:"metrics"`
	Setup          json.RawMessage `db:"setup" json:"setup"`
}
