package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"safebite/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackGateway tries providers in order, skipping those whose circuit
// was opened by a 429. It implements port.ReasoningGateway.
type FallbackGateway struct {
	gateways []port.ReasoningGateway
	circuits []*circuitState
	names    []string
	logger   *zap.Logger
}

// NewFallbackGateway creates a FallbackGateway from an ordered list of
// providers and their names.
func NewFallbackGateway(gateways []port.ReasoningGateway, names []string, logger *zap.Logger) *FallbackGateway {
	circuits := make([]*circuitState, len(gateways))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackGateway{
		gateways: gateways,
		circuits: circuits,
		names:    names,
		logger:   logger.Named("fallback"),
	}
}

func (f *FallbackGateway) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, g := range f.gateways {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Debug("skipping provider, circuit open",
				zap.String("provider", f.names[i]), zap.Time("reset_at", resetAt))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := g.Explain(ctx, input)
		if err == nil {
			return out, nil
		}

		f.logger.Warn("provider failed", zap.String("provider", f.names[i]), zap.Error(err))
		lastErr = err

		// The caller's deadline is shared by every provider.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("reasoning gateway: %w", ctx.Err())
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
