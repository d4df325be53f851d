package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"safebite/internal/port"
)

// RateLimitedGateway caps the request rate to the wrapped gateway. A call
// waits for a token only as long as its context allows.
type RateLimitedGateway struct {
	next    port.ReasoningGateway
	limiter *rate.Limiter
}

// NewRateLimitedGateway allows perSecond requests with the given burst. A
// non-positive rate disables limiting.
func NewRateLimitedGateway(next port.ReasoningGateway, perSecond float64, burst int) *RateLimitedGateway {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedGateway{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (g *RateLimitedGateway) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return g.next.Explain(ctx, input)
}
