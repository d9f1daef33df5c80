package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "orchard"

var (
	ReadingsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "readings_generated_total",
		Namespace: Namespace,
		Help:      "The total number of sensor readings appended by the generator.",
	})

	SinkErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "sink_errors_total",
			Namespace: Namespace,
			Help:      "The total number of failed reading deliveries per sink.",
		},
		[]string{"sink"},
	)

	CommandsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "commands_submitted_total",
		Namespace: Namespace,
		Help:      "The total number of control commands submitted.",
	})

	CommandsExecutedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "commands_executed_total",
			Namespace: Namespace,
			Help:      "The total number of control commands executed and marked done.",
		},
		[]string{"actuator"},
	)

	ForecastDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "forecast_duration_seconds",
			Namespace: Namespace,
			Buckets:   prometheus.DefBuckets,
			Help:      "The latency of forecast computations in seconds.",
		},
		[]string{"signal", "path"},
	)

	AlertsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "alerts_dispatched_total",
			Namespace: Namespace,
			Help:      "The total number of environment alerts dispatched to the push worker pool.",
		},
		[]string{"code"},
	)

	AlertsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "alerts_dropped_total",
			Namespace: Namespace,
			Help:      "The total number of environment alerts rejected because the push queue was full.",
		},
		[]string{"code"},
	)

	HttpRequestLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "http_request_latency_seconds",
			Namespace: Namespace,
			Buckets:   prometheus.DefBuckets,
			Help:      "The latency of http requests in seconds.",
		},
		[]string{"method", "route", "status"},
	)
)
