// Package logger provides pipeline-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/scenario-ranker/internal/models"
)

// PipelineLogger provides dedicated logging for ranking pipeline stages.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger, runID string) *PipelineLogger {
	return &PipelineLogger{
		Entry: OrDiscard(baseLogger).WithFields(logrus.Fields{
			"component": "pipeline",
			"run_id":    runID,
		}),
	}
}

// LogStage logs the row count flowing out of a stage.
func (pl *PipelineLogger) LogStage(stage string, rowsIn, rowsOut int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"stage":       stage,
		"rows_in":     rowsIn,
		"rows_out":    rowsOut,
		"duration_ms": duration.Milliseconds(),
	}).Info("Pipeline stage completed")
}

// LogWarnings logs every recoverable diagnostic collected by a stage.
func (pl *PipelineLogger) LogWarnings(stage string, warnings []models.Warning) {
	for _, w := range warnings {
		LogWarning(pl.Entry.WithField("stage", stage), w)
	}
}

// LogPublished logs a written output table.
func (pl *PipelineLogger) LogPublished(name, path string, rows int) {
	pl.WithFields(logrus.Fields{
		"table": name,
		"path":  path,
		"rows":  rows,
	}).Info("Output table published")
}

// LogRunFinished logs the final outcome of a run.
func (pl *PipelineLogger) LogRunFinished(run *models.RankingRun) {
	entry := pl.WithFields(logrus.Fields{
		"symbol":        run.Symbol,
		"status":        run.Status,
		"summary_files": run.SummaryFiles,
		"setup_files":   run.SetupFiles,
		"scored_rows":   run.ScoredRows,
		"ranked_rows":   run.RankedRows,
		"joined_setups": run.JoinedSetups,
		"warnings":      run.WarningCount,
		"duration_ms":   run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	})
	if run.Status == models.RunStatusSuccess {
		entry.Info("Ranking run finished")
		return
	}
	entry.WithField("error", run.Error).Error("Ranking run failed")
}

// LogWarning writes one diagnostic at warn level.
func LogWarning(entry *logrus.Entry, w models.Warning) {
	fields := logrus.Fields{"kind": string(w.Kind)}
	if w.Column != "" {
		fields["column"] = w.Column
	}
	if w.Path != "" {
		fields["file"] = w.Path
	}
	if w.Count > 0 {
		fields["count"] = w.Count
	}
	entry.WithFields(fields).Warn(w.Detail)
}
