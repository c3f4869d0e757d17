// Package metrics holds the Prometheus collectors for platform traffic.
// The registry is private to the process; --metrics-file dumps it in the
// text exposition format when a command finishes.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry collects every twcatele metric.
var Registry = prometheus.NewRegistry()

var (
	// PlatformRequests counts requests per service, HTTP method and status.
	PlatformRequests = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twcatele",
			Name:      "platform_requests_total",
			Help:      "Total number of platform API requests",
		},
		[]string{"service", "method", "status"},
	)

	// PlatformRequestDuration observes request latency per service and method.
	PlatformRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "twcatele",
			Name:      "platform_request_duration_seconds",
			Help:      "Platform API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	// ReadingsFetched counts readings returned per telemetry backend.
	ReadingsFetched = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twcatele",
			Name:      "readings_fetched_total",
			Help:      "Total number of telemetry readings fetched",
		},
		[]string{"backend"},
	)

	// CacheLookups counts list cache lookups by backend and result
	// (fresh, stale, miss).
	CacheLookups = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "twcatele",
			Name:      "cache_lookups_total",
			Help:      "Total number of list cache lookups",
		},
		[]string{"backend", "result"},
	)
)

// WriteFile writes the registry to path in the text exposition format.
func WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("metrics: failed to write %s: %w", path, err)
	}
	return nil
}
