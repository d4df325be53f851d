package llm

import (
	"context"
	"errors"
	"time"

	"safebite/internal/metrics"
	"safebite/internal/port"
)

// InstrumentedGateway records outcome and latency of every consult.
type InstrumentedGateway struct {
	next    port.ReasoningGateway
	metrics *metrics.Metrics
}

// NewInstrumentedGateway wraps next with Prometheus instrumentation.
func NewInstrumentedGateway(next port.ReasoningGateway, m *metrics.Metrics) *InstrumentedGateway {
	return &InstrumentedGateway{next: next, metrics: m}
}

func (g *InstrumentedGateway) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	start := time.Now()
	out, err := g.next.Explain(ctx, input)
	g.metrics.ObserveGateway(outcomeOf(err), time.Since(start))
	return out, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrRateLimited):
		return metrics.OutcomeLimited
	case errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeTimeout
	default:
		return metrics.OutcomeError
	}
}
