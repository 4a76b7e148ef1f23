package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/scenario-ranker/internal/models"
)

// TxRunner starts a transaction and hands it to fn.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// RunRecorder writes a run and its ranked strategies in one transaction.
type RunRecorder struct {
	db TxRunner
}

// NewRunRecorder creates a recorder over a transactional database.
func NewRunRecorder(db TxRunner) *RunRecorder {
	return &RunRecorder{db: db}
}

// Record saves run, then strategies. Either both land or neither does.
func (r *RunRecorder) Record(ctx context.Context, run *models.RankingRun, strategies []models.RankedStrategy) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		repo := NewPostgresRankingRunRepository(tx)
		if err := repo.SaveRun(ctx, run); err != nil {
			return err
		}
		_, err := repo.SaveRankedStrategies(ctx, strategies)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}
