// Package metrics registers the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	SnapshotExports prometheus.Counter
	SnapshotImports prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CacheFallbacks  prometheus.Counter
	CacheInstalls   *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		Mutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "expense_tracker_mutations_total",
			Help: "Domain state mutations by operation.",
		}, []string{"operation"}),
		SnapshotExports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "expense_tracker_snapshot_exports_total",
			Help: "Exported state snapshots.",
		}),
		SnapshotImports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "expense_tracker_snapshot_imports_total",
			Help: "Successfully imported state snapshots.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "expense_tracker_asset_cache_hits_total",
			Help: "Asset requests served from the cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "expense_tracker_asset_cache_misses_total",
			Help: "Asset requests that went to the origin.",
		}),
		CacheFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "expense_tracker_asset_cache_shell_fallbacks_total",
			Help: "Asset requests answered with the cached shell document.",
		}),
		CacheInstalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "expense_tracker_asset_cache_installs_total",
			Help: "Cache generation install attempts by outcome.",
		}, []string{"outcome"}),
	}
}
