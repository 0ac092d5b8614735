// Package metrics provides Prometheus instrumentation for embedder.
//
// All metrics are prefixed with "embedder_". Resolution and render metrics
// are recorded by the render pipeline for every request, whether it comes
// from the CLI or the HTTP service; HTTP metrics only by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "embedder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedder_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Resolution metrics
var (
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedder_resolutions_total",
			Help: "Total number of reference resolutions by provider and outcome",
		},
		[]string{"provider", "outcome"}, // outcome: "resolved", "fallback", "unresolved"
	)

	WarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedder_warnings_total",
			Help: "Total number of non-fatal render warnings by provider and kind",
		},
		[]string{"provider", "kind"},
	)

	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedder_renders_total",
			Help: "Total number of player renders by provider, mode and status",
		},
		[]string{"provider", "mode", "status"},
	)
)

// oEmbed metrics
var (
	OEmbedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedder_oembed_fetches_total",
			Help: "Total number of oEmbed metadata fetches by status",
		},
		[]string{"status"}, // "success", "error"
	)

	OEmbedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedder_oembed_fetch_duration_seconds",
			Help:    "oEmbed metadata fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Build info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "embedder_app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// SetAppInfo publishes the build information gauge.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}
