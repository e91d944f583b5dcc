package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the gateway's Prometheus collectors on a private registry
// so tests can run multiple gateways without collector collisions.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	ratios     *prometheus.HistogramVec
}

// NewMetrics creates and registers the gateway collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compactd",
			Name:      "operations_total",
			Help:      "Compression operations served, by operation and backend mode.",
		}, []string{"op", "mode"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "compactd",
			Name:      "operation_errors_total",
			Help:      "Failed operations, by operation.",
		}, []string{"op"}),
		ratios: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "compactd",
			Name:      "compression_ratio",
			Help:      "Achieved compression ratio per operation.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"op"}),
	}

	m.registry.MustRegister(m.operations, m.errors, m.ratios)
	return m
}

// RecordOperation counts a served operation and observes its ratio.
func (m *Metrics) RecordOperation(op, mode string, ratio float64) {
	m.operations.WithLabelValues(op, mode).Inc()
	m.ratios.WithLabelValues(op).Observe(ratio)
}

// RecordError counts a failed operation.
func (m *Metrics) RecordError(op string) {
	m.errors.WithLabelValues(op).Inc()
}
