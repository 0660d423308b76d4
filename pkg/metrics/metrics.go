// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostOperations counts post service calls by operation and outcome.
	PostOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seniors_post_operations_total",
		Help: "Post service operations by operation and result",
	}, []string{"operation", "result"})

	// MediaStorageOperations counts object storage calls by operation and outcome.
	MediaStorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seniors_media_storage_operations_total",
		Help: "Object storage operations by operation and result",
	}, []string{"operation", "result"})

	// MediaCleanupTasks counts cleanup tasks by how they were handled.
	MediaCleanupTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seniors_media_cleanup_tasks_total",
		Help: "Media cleanup tasks by stage (queued, queue_failed, done, failed)",
	}, []string{"stage"})

	// PostCacheLookups counts detail cache lookups by outcome.
	PostCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seniors_post_cache_lookups_total",
		Help: "Post detail cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
