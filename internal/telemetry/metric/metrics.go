// Package metric exposes the service's Prometheus collectors.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CompressionsTotal counts finished compressions by profile and
	// terminal status (ok, invalid, unavailable, failed, timeout).
	CompressionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pdfcompress_compressions_total",
		Help: "Finished compression requests by profile and status.",
	}, []string{"profile", "status"})

	// CompressionDuration observes wall time of the engine runs.
	CompressionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pdfcompress_compression_duration_seconds",
		Help:    "Duration of Ghostscript compression runs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// BytesSaved accumulates original minus compressed sizes.
	BytesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfcompress_bytes_saved_total",
		Help: "Total bytes removed from uploaded documents.",
	})

	// RateLimited counts rejected requests.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pdfcompress_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
