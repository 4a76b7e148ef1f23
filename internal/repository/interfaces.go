package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/scenario-ranker/internal/models"
)

// RankingRunRepository defines the interface for ranking run history
type RankingRunRepository interface {
	SaveRun(ctx context.Context, run *models.RankingRun) error
	SaveRankedStrategies(ctx context.Context, strategies []models.RankedStrategy) (int64, error)
	GetRun(ctx context.Context, id uuid.UUID) (*models.RankingRun, error)
	ListRecentRuns(ctx context.Context, symbol string, limit int) ([]*models.RankingRun, error)
}
