// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// PipelineRunsTotal tracks voice query pipeline runs by outcome.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total voice query pipeline runs",
		},
		[]string{"outcome"},
	)

	// StepDuration tracks per-step pipeline duration.
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_step_duration_seconds",
			Help:    "Duration of individual pipeline steps",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"step", "outcome"},
	)

	// RetryAttemptsTotal tracks transport attempts per operation.
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total transport attempts including retries",
		},
		[]string{"operation"},
	)

	// ServiceUp reports probe results per upstream service.
	ServiceUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "service_up",
			Help: "Whether the upstream service answered its last probe (1 = up)",
		},
		[]string{"service"},
	)

	// MessagesTotal tracks messages appended to the conversation.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_messages_total",
			Help: "Total messages appended to the conversation",
		},
		[]string{"role"},
	)

	// ConversationLength reports the current retained message count.
	ConversationLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_length",
			Help: "Messages currently retained in the conversation",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordStep records metrics for a pipeline step.
func RecordStep(step, outcome string, duration float64) {
	StepDuration.WithLabelValues(step, outcome).Observe(duration)
}

// RecordProbe records a probe result for a service.
func RecordProbe(service string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	ServiceUp.WithLabelValues(service).Set(v)
}
