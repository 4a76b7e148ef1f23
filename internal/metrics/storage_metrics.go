package metrics

import "github.com/prometheus/client_golang/prometheus"

// Storage counter vectors
var (
	ArchiveCacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scenario_ranker",
		Name:      "archive_cache_requests_total",
		Help:      "Archive listing cache lookups by result",
	}, []string{"result"})

	StorageObjectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scenario_ranker",
		Name:      "storage_objects_total",
		Help:      "Objects transferred to or from remote storage by operation",
	}, []string{"operation"})

	ArtifactsCopiedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scenario_ranker",
		Name:      "artifacts_copied_total",
		Help:      "Chart and trade-log artifacts consolidated into the output tree",
	})
)

// RecordArchiveCache records a listing cache lookup.
// result should be one of: "hit", "miss"
func RecordArchiveCache(result string) {
	ArchiveCacheRequestsTotal.WithLabelValues(result).Inc()
}

// RecordStorageObject records one object transfer.
// operation should be one of: "fetch", "upload"
func RecordStorageObject(operation string) {
	StorageObjectsTotal.WithLabelValues(operation).Inc()
}

// RecordArtifactCopied records one consolidated artifact.
func RecordArtifactCopied() {
	ArtifactsCopiedTotal.Inc()
}
