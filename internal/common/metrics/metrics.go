// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_submissions_total",
			Help: "Total number of settled submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "widget_submissions_in_flight",
			Help: "Number of submissions currently pending",
		},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "widget_submission_duration_seconds",
			Help:    "Time from submit to settlement in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"outcome"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "widget_validation_failures_total",
			Help: "Total number of rejected submits by offending field",
		},
		[]string{"field"},
	)
)
