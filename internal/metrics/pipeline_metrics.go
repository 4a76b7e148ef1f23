package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline histogram vectors
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scenario_ranker",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	CompositeScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scenario_ranker",
		Name:      "composite_score",
		Help:      "Composite scores of ranked strategies",
		Buckets:   []float64{-2, -1, -0.5, 0, 0.5, 1, 2},
	})
)

// Pipeline gauge vectors
var (
	StageRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "scenario_ranker",
		Name:      "stage_rows",
		Help:      "Rows produced by each pipeline stage in the last run",
	}, []string{"stage"})
)

// Pipeline counter vectors
var (
	FilesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scenario_ranker",
		Name:      "files_total",
		Help:      "Scenario files seen by kind and outcome",
	}, []string{"kind", "outcome"})
)

// RecordStage records a stage's duration and output row count.
func RecordStage(stage string, rows int, durationSeconds float64) {
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
	StageRows.WithLabelValues(stage).Set(float64(rows))
}

// RecordFiles records scenario files by kind ("summary", "setup") and outcome ("used", "skipped").
func RecordFiles(kind, outcome string, count int) {
	FilesTotal.WithLabelValues(kind, outcome).Add(float64(count))
}

// RecordCompositeScore records the composite score of a ranked strategy.
func RecordCompositeScore(score float64) {
	CompositeScore.Observe(score)
}
