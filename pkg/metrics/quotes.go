package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QuoteMetrics records quote operation latency and lifecycle transitions.
type QuoteMetrics struct {
	duration    *prometheus.HistogramVec
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_operation_duration_seconds",
		Help:    "Duration of quote service operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_operations_total",
		Help: "Quote service operations by outcome.",
	}, []string{"operation", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_transitions_total",
		Help: "Applied quote lifecycle transitions.",
	}, []string{"action", "from", "to"})
	reg.MustRegister(duration, operations, transitions)
	return &QuoteMetrics{
		duration:    duration,
		operations:  operations,
		transitions: transitions,
	}
}

// ObserveOperation records one service call. outcome is an error code or "ok".
func (m *QuoteMetrics) ObserveOperation(operation, outcome string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	operation = normalizeLabel(operation)
	outcome = normalizeLabel(outcome)
	m.duration.WithLabelValues(operation, outcome).Observe(d.Seconds())
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// IncTransition counts a committed status change.
func (m *QuoteMetrics) IncTransition(action, from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(from), normalizeLabel(to)).Inc()
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
