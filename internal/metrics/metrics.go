// FILE: internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena"

// Decision outcomes
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeNoMove   = "no_move"
	OutcomeOverrun  = "over_ceiling"
)

// Metrics holds the collectors of one orchestrator. Each instance owns its
// registry so several orchestrators can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// DecisionLatency observes per-decision wall time.
	// Labels: difficulty, personality
	DecisionLatency *prometheus.HistogramVec

	// DecisionsTotal counts decisions by outcome.
	// Labels: difficulty, personality, outcome
	DecisionsTotal *prometheus.CounterVec

	// FraudAlertsTotal counts fraud-score threshold crossings.
	// Labels: source (agent, human)
	FraudAlertsTotal *prometheus.CounterVec

	// MatchesActive tracks sessions that are pending or active
	MatchesActive prometheus.Gauge

	// MatchesEnded counts ended sessions.
	// Labels: status
	MatchesEnded *prometheus.CounterVec

	// PoolAgents tracks pooled agents.
	// Labels: state (busy, idle)
	PoolAgents *prometheus.GaugeVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		DecisionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decision_latency_seconds",
			Help:      "Move decision latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.04, 0.05, 0.075, 0.09, 0.1, 0.15},
		}, []string{"difficulty", "personality"}),
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Move decisions by outcome",
		}, []string{"difficulty", "personality", "outcome"}),
		FraudAlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_alerts_total",
			Help:      "Fraud score threshold crossings",
		}, []string{"source"}),
		MatchesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matches_active",
			Help:      "Matches currently pending or active",
		}),
		MatchesEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_ended_total",
			Help:      "Ended matches by terminal status",
		}, []string{"status"}),
		PoolAgents: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_agents",
			Help:      "Pooled agents by state",
		}, []string{"state"}),
	}
}

// ObserveDecision records one decision
func (m *Metrics) ObserveDecision(difficulty, personality, outcome string, latencyMs float64) {
	m.DecisionLatency.WithLabelValues(difficulty, personality).Observe(latencyMs / 1000)
	m.DecisionsTotal.WithLabelValues(difficulty, personality, outcome).Inc()
}

// FraudAlert counts one alert from source
func (m *Metrics) FraudAlert(source string) {
	m.FraudAlertsTotal.WithLabelValues(source).Inc()
}

// MatchEnded moves one session out of the active gauge
func (m *Metrics) MatchEnded(status string) {
	m.MatchesActive.Dec()
	m.MatchesEnded.WithLabelValues(status).Inc()
}

// SetPool publishes pool occupancy
func (m *Metrics) SetPool(total, busy int) {
	m.PoolAgents.WithLabelValues("busy").Set(float64(busy))
	m.PoolAgents.WithLabelValues("idle").Set(float64(total - busy))
}

// Registry exposes the underlying registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves this instance's metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
