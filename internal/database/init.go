package database

import (
	"context"
	"fmt"

	"github.com/yourusername/scenario-ranker/internal/config"
)

// Schema creates the run history tables when they do not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS ranking_runs (
	id              UUID PRIMARY KEY,
	symbol          TEXT NOT NULL,
	status          TEXT NOT NULL,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL,
	summary_files   INTEGER NOT NULL DEFAULT 0,
	setup_files     INTEGER NOT NULL DEFAULT 0,
	scored_rows     INTEGER NOT NULL DEFAULT 0,
	ranked_rows     INTEGER NOT NULL DEFAULT 0,
	joined_setups   INTEGER NOT NULL DEFAULT 0,
	warning_count   INTEGER NOT NULL DEFAULT 0,
	filter_settings JSONB,
	error           TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS ranking_runs_symbol_started_idx ON ranking_runs (symbol, started_at DESC);

CREATE TABLE IF NOT EXISTS ranked_strategies (
	run_id          UUID NOT NULL REFERENCES ranking_runs (id) ON DELETE CASCADE,
	rank            INTEGER NOT NULL,
	symbol          TEXT NOT NULL,
	scenario        TEXT NOT NULL,
	trader_id       TEXT NOT NULL,
	composite_score DOUBLE PRECISION,
	metrics         JSONB,
	setup           JSONB,
	PRIMARY KEY (run_id, rank)
);
`

// Initialize creates a database connection pool and ensures the run history schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply run history schema: %w", err)
	}

	return db, nil
}
