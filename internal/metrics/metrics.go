// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submissions_total",
			Help: "Total number of submission uploads by outcome",
		},
		[]string{"outcome"},
	)

	UploadedBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submission_uploaded_bytes",
			Help:    "Size of stored submission files",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	ErrorsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_errors_recorded_total",
			Help: "Unexpected failures written to the errors table",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)
