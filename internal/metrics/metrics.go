// Package metrics holds the Prometheus collectors of the service. All
// methods are safe on a nil *Metrics so tests can skip instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"safebite/internal/domain"
)

// Gateway outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeCacheHit = "cache_hit"
	OutcomeLimited  = "rate_limited"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	verdicts        *prometheus.CounterVec
	matches         *prometheus.CounterVec
	gatewayRequests *prometheus.CounterVec
	gatewayLatency  prometheus.Histogram
	candidates      prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safebite",
			Name:      "verdicts_total",
			Help:      "Safety verdicts returned, by label.",
		}, []string{"label"}),
		matches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safebite",
			Name:      "matches_total",
			Help:      "Allergen matches reported in verdicts, by match kind.",
		}, []string{"kind"}),
		gatewayRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safebite",
			Name:      "gateway_requests_total",
			Help:      "Reasoning gateway consults, by outcome.",
		}, []string{"outcome"}),
		gatewayLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "safebite",
			Name:      "gateway_latency_seconds",
			Help:      "Reasoning gateway latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		candidates: f.NewCounter(prometheus.CounterOpts{
			Namespace: "safebite",
			Name:      "candidates_total",
			Help:      "Candidate allergens added to pending review.",
		}),
	}
}

// ObserveVerdict counts a verdict and each of its matches.
func (m *Metrics) ObserveVerdict(v *domain.Verdict) {
	if m == nil || v == nil {
		return
	}
	m.verdicts.WithLabelValues(string(v.Label)).Inc()
	for i := range v.Matches {
		m.matches.WithLabelValues(string(v.Matches[i].Kind)).Inc()
	}
}

// ObserveGateway records one gateway consult.
func (m *Metrics) ObserveGateway(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCacheHit && outcome != OutcomeLimited {
		m.gatewayLatency.Observe(elapsed.Seconds())
	}
}

// AddCandidates counts candidates queued for review.
func (m *Metrics) AddCandidates(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.candidates.Add(float64(n))
}
