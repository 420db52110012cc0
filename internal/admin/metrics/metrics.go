// Package metrics instruments the administration surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the admin handlers.
type Metrics struct {
	OverviewDuration prometheus.Histogram
	CacheCleared     *prometheus.CounterVec
}

// New creates and registers the admin metrics.
func New() *Metrics {
	return &Metrics{
		OverviewDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "signet_admin_overview_duration_seconds",
			Help:    "Time spent gathering and rendering the overview page",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CacheCleared: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "signet_admin_cache_cleared_total",
			Help: "Cache clear actions taken from the admin surface",
		}, []string{"kind"}),
	}
}
