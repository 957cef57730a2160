// Package metrics exposes Prometheus instrumentation for dispatches and
// the resources adapters hold on behalf of responses.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// DispatchTotal counts dispatched requests by scheme and status code.
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchr_dispatch_total",
			Help: "Dispatched requests",
		},
		[]string{"scheme", "status"},
	)

	// DispatchDuration records the time until status and headers are known.
	DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetchr_dispatch_duration_seconds",
			Help:    "Dispatch duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scheme"},
	)

	// HTTPRetriesTotal counts connection attempts repeated by the network adapter.
	HTTPRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fetchr_http_retries_total",
			Help: "Retried network attempts",
		},
	)

	TempFilesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fetchr_tempfiles_active",
			Help: "Temporary files held by open object-store responses",
		},
	)
)

func init() {
	prometheus.MustRegister(
		DispatchTotal,
		DispatchDuration,
		HTTPRetriesTotal,
		TempFilesActive,
	)
}
