// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UnknownCrop is the crop label used for ids that match no profile, so
// arbitrary client input never becomes a label value.
const UnknownCrop = "unknown"

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_predictions_total",
			Help: "Total number of successful predictions by crop and band",
		},
		[]string{"crop", "band"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_prediction_failures_total",
			Help: "Total number of failed predictions by crop and error code",
		},
		[]string{"crop", "error_code"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "crop_prediction_duration_seconds",
			Help: "End-to-end prediction duration in seconds",
		},
		[]string{"crop"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crop_inference_duration_seconds",
			Help:    "Inference engine call duration in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"crop"},
	)

	EnginesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crop_engines_loaded",
			Help: "Number of crops with a loaded inference engine",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crop_prediction_cache_lookups_total",
			Help: "Prediction cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)
