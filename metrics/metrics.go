// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studentgrade_predictions_served_total",
		Help: "Total number of predictions returned to clients.",
	})
	PredictionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studentgrade_predictions_failed_total",
		Help: "Total number of predictions that failed while scoring.",
	})
	PredictionsUnavailable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studentgrade_predictions_unavailable_total",
		Help: "Total number of prediction requests rejected because no model is loaded.",
	})
	PredictionValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "studentgrade_prediction_g3",
		Help:    "Distribution of predicted final grades.",
		Buckets: prometheus.LinearBuckets(0, 2, 11),
	})
	TrackerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentgrade_tracker_failures_total",
		Help: "Total number of runs the experiment tracker failed to record.",
	}, []string{"experiment"})
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentgrade_events_published_total",
		Help: "Total number of events published to Redis.",
	}, []string{"channel"})
	RetrainJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentgrade_retrain_jobs_total",
		Help: "Total number of retrain jobs by terminal or initial state.",
	}, []string{"state"})
	RetrainJobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studentgrade_retrain_jobs_running",
		Help: "Number of retrain jobs currently running.",
	})
	TrainingStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studentgrade_training_stage_duration_seconds",
		Help:    "Duration of each training flow stage.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	}, []string{"stage"})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentgrade_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studentgrade_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)
