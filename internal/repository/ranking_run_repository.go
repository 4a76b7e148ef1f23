// Package repository persists ranking runs and their ranked strategies.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/scenario-ranker/internal/database"
	"github.com/yourusername/scenario-ranker/internal/models"
)

const errScanRankingRun = "failed to scan ranking run: %w"

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("ranking run not found")

var rankedStrategyColumns = []string{
	"run_id", "rank", "symbol", "scenario", "trader_id", "composite_score", "metrics", "setup",
}

const selectRankingRun = `
	SELECT id, symbol, status, started_at, finished_at, summary_files, setup_files,
		scored_rows, ranked_rows, joined_setups, warning_count, filter_settings, error, created_at
	FROM ranking_runs`

// PostgresRankingRunRepository implements RankingRunRepository for PostgreSQL
type PostgresRankingRunRepository struct {
	db database.DBTX
}

// NewPostgresRankingRunRepository creates a new ranking run repository
func NewPostgresRankingRunRepository(db database.DBTX) RankingRunRepository {
	return &PostgresRankingRunRepository{db: db}
}

// SaveRun upserts a ranking run
func (r *PostgresRankingRunRepository) SaveRun(ctx context.Context, run *models.RankingRun) error {
	query := `
		INSERT INTO ranking_runs (
			id, symbol, status, started_at, finished_at, summary_files, setup_files,
			scored_rows, ranked_rows, joined_setups, warning_count, filter_settings, error, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			finished_at = EXCLUDED.finished_at,
			summary_files = EXCLUDED.summary_files,
			setup_files = EXCLUDED.setup_files,
			scored_rows = EXCLUDED.scored_rows,
			ranked_rows = EXCLUDED.ranked_rows,
			joined_setups = EXCLUDED.joined_setups,
			warning_count = EXCLUDED.warning_count,
			error = EXCLUDED.error
	`

	_, err := r.db.Exec(ctx, query,
		run.ID, run.Symbol, run.Status, run.StartedAt, run.FinishedAt, run.SummaryFiles, run.SetupFiles,
		run.ScoredRows, run.RankedRows, run.JoinedSetups, run.WarningCount, run.FilterSettings, run.Error, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save ranking run: %w", err)
	}
	return nil
}

// SaveRankedStrategies bulk-inserts ranked strategies with COPY
func (r *PostgresRankingRunRepository) SaveRankedStrategies(ctx context.Context, strategies []models.RankedStrategy) (int64, error) {
	if len(strategies) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(strategies))
	for i, s := range strategies {
		rows[i] = []any{s.RunID, s.Rank, s.Symbol, s.Scenario, s.TraderID, s.CompositeScore, s.Metrics, s.Setup}
	}

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"ranked_strategies"}, rankedStrategyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("failed to save ranked strategies: %w", err)
	}
	return n, nil
}

// GetRun retrieves a ranking run by ID
func (r *PostgresRankingRunRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.RankingRun, error) {
	run, err := scanRun(r.db.QueryRow(ctx, selectRankingRun+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf(errScanRankingRun, err)
	}
	return run, nil
}

// ListRecentRuns retrieves the latest runs for a symbol
func (r *PostgresRankingRunRepository) ListRecentRuns(ctx context.Context, symbol string, limit int) ([]*models.RankingRun, error) {
	rows, err := r.db.Query(ctx, selectRankingRun+` WHERE symbol = $1 ORDER BY started_at DESC LIMIT $2`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.RankingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanRankingRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*models.RankingRun, error) {
	run := &models.RankingRun{}
	err := row.Scan(
		&run.ID, &run.Symbol, &run.Status, &run.StartedAt, &run.FinishedAt, &run.SummaryFiles, &run.SetupFiles,
		&run.ScoredRows, &run.RankedRows, &run.JoinedSetups, &run.WarningCount, &run.FilterSettings, &run.Error, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
