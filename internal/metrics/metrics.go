// Package metrics exposes Prometheus instrumentation for the forecasting
// service and the job worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finsight"

// Outcome labels
const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeFailure         = "failure"
)

// Metrics holds the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	predictionConfidence *prometheus.HistogramVec
	outliersTotal        prometheus.Counter
	jobsTotal            *prometheus.CounterVec
	jobDuration          prometheus.Histogram
	jobsInFlight         prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "requests_total",
			Help:      "Forecast engine operations by operation, method and outcome.",
		}, []string{"operation", "method", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "request_duration_seconds",
			Help:      "Forecast engine operation latency.",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		predictionConfidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "prediction_confidence",
			Help:      "Per-point confidence of generated forecasts.",
			Buckets:   prometheus.LinearBuckets(0.3, 0.1, 8),
		}, []string{"method"}),
		outliersTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "outliers_replaced_total",
			Help:      "Observations replaced by the median during preprocessing.",
		}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "processed_total",
			Help:      "Queued forecast jobs by status.",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Queued forecast job processing time.",
			Buckets:   prometheus.DefBuckets,
		}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Forecast jobs currently being processed.",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.predictionConfidence,
		m.outliersTotal,
		m.jobsTotal,
		m.jobDuration,
		m.jobsInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one engine operation
func (m *Metrics) ObserveRequest(operation, method, outcome string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(operation, method, outcome).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveConfidence records the per-point confidence of a forecast
func (m *Metrics) ObserveConfidence(method string, confidences []float64) {
	h := m.predictionConfidence.WithLabelValues(method)
	for _, c := range confidences {
		h.Observe(c)
	}
}

// AddOutliers counts replaced observations
func (m *Metrics) AddOutliers(n int) {
	if n > 0 {
		m.outliersTotal.Add(float64(n))
	}
}

// JobStarted marks a job as in flight and returns a function that records
// its completion with the given status.
func (m *Metrics) JobStarted() func(status string) {
	start := time.Now()
	m.jobsInFlight.Inc()
	return func(status string) {
		m.jobsInFlight.Dec()
		m.jobsTotal.WithLabelValues(status).Inc()
		m.jobDuration.Observe(time.Since(start).Seconds())
	}
}
