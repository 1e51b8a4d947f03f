// Package metrics exposes the prometheus collectors used by runtime,
// orchestrator, and negotiation, grounded on the teacher's
// pkg/observability/metrics.go (same per-component CounterVec/HistogramVec
// shape, trimmed to this core's four tracked concerns).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every prometheus collector this core registers. A nil
// *Metrics is valid everywhere it's used — every method is a no-op on a nil
// receiver, so instrumentation call sites never need an enabled check.
type Metrics struct {
	registry *prometheus.Registry

	dispatches        *prometheus.CounterVec
	dispatchSeconds   *prometheus.HistogramVec
	toolRetries       *prometheus.CounterVec
	negotiations      *prometheus.CounterVec
	negotiationRounds *prometheus.HistogramVec
	delegations       *prometheus.CounterVec
}

// New builds a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaziai", Subsystem: "orchestrator", Name: "dispatches_total",
		Help: "Total orchestrator dispatches, labeled by intent and outcome.",
	}, []string{"intent", "outcome"})

	m.dispatchSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kaziai", Subsystem: "orchestrator", Name: "dispatch_duration_seconds",
		Help: "Wall-clock duration of one orchestrator dispatch.", Buckets: prometheus.DefBuckets,
	}, []string{"intent"})

	m.toolRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaziai", Subsystem: "runtime", Name: "tool_retries_total",
		Help: "Tool execution retries, labeled by agent and tool name.",
	}, []string{"agent", "tool"})

	m.negotiations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaziai", Subsystem: "negotiation", Name: "sessions_total",
		Help: "Negotiation sessions, labeled by whether consensus was reached.",
	}, []string{"consensus"})

	m.negotiationRounds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kaziai", Subsystem: "negotiation", Name: "rounds",
		Help:    "Rounds taken per negotiation session.",
		Buckets: []float64{1, 2, 3},
	}, []string{})

	m.delegations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kaziai", Subsystem: "orchestrator", Name: "delegations_total",
		Help: "Agent self-delegations, labeled by target agent and outcome.",
	}, []string{"target_agent", "outcome"})

	m.registry.MustRegister(m.dispatches, m.dispatchSeconds, m.toolRetries, m.negotiations, m.negotiationRounds, m.delegations)
	return m
}

// Handler returns the http.Handler serving this registry's metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDispatch(intent, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(intent, outcome).Inc()
	m.dispatchSeconds.WithLabelValues(intent).Observe(seconds)
}

func (m *Metrics) IncToolRetry(agent, tool string) {
	if m == nil {
		return
	}
	m.toolRetries.WithLabelValues(agent, tool).Inc()
}

func (m *Metrics) ObserveNegotiation(consensusReached bool, rounds int) {
	if m == nil {
		return
	}
	label := "false"
	if consensusReached {
		label = "true"
	}
	m.negotiations.WithLabelValues(label).Inc()
	m.negotiationRounds.WithLabelValues().Observe(float64(rounds))
}

func (m *Metrics) IncDelegation(targetAgent, outcome string) {
	if m == nil {
		return
	}
	m.delegations.WithLabelValues(targetAgent, outcome).Inc()
}
