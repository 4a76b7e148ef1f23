// Package metrics provides the centralized Prometheus registry for ranking runs.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scenario_ranker",
		Name:      "runs_total",
		Help:      "Total number of ranking runs by status",
	}, []string{"status"})
	WarningsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scenario_ranker",
		Name:      "warnings_total",
		Help:      "Recoverable diagnostics raised during ranking by kind",
	}, []string{"kind"})
)

// Gauge metrics
var (
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "scenario_ranker",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last ranking run finished",
	})
)

// Histogram metrics
var (
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scenario_ranker",
		Name:      "run_duration_seconds",
		Help:      "Duration of complete ranking runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(WarningsTotal)
		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(RunDuration)

		// Register pipeline metrics
		registry.MustRegister(StageDuration)
		registry.MustRegister(StageRows)
		registry.MustRegister(FilesTotal)
		registry.MustRegister(CompositeScore)

		// Register storage metrics
		registry.MustRegister(ArchiveCacheRequestsTotal)
		registry.MustRegister(StorageObjectsTotal)
		registry.MustRegister(ArtifactsCopiedTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// RecordRun records a finished run.
// status should be one of: "success", "failure"
func RecordRun(status string, durationSeconds float64, finishedUnix float64) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(durationSeconds)
	LastRunTimestamp.Set(finishedUnix)
}

// RecordWarning records a recoverable diagnostic.
func RecordWarning(kind string) {
	WarningsTotal.WithLabelValues(kind).Inc()
}
