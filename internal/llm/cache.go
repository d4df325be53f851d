package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"go.uber.org/zap"

	"safebite/internal/metrics"
	"safebite/internal/port"
)

// CachedGateway answers repeated questions from an AdviceCache. Cache
// failures are logged and bypassed.
type CachedGateway struct {
	next    port.ReasoningGateway
	cache   port.AdviceCache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCachedGateway wraps next with cache lookups.
func NewCachedGateway(next port.ReasoningGateway, cache port.AdviceCache, m *metrics.Metrics, logger *zap.Logger) *CachedGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedGateway{next: next, cache: cache, metrics: m, logger: logger.Named("advice_cache")}
}

// CacheKey identifies a question independent of allergen order and case.
func CacheKey(input port.ExplainInput) string {
	names := make([]string, len(input.Allergens))
	for i, a := range input.Allergens {
		names[i] = strings.ToLower(strings.TrimSpace(a))
	}
	sort.Strings(names)
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(input.Product)) + "\x00" + strings.Join(names, "\x00")))
	return hex.EncodeToString(sum[:])
}

func (g *CachedGateway) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	key := CacheKey(input)

	out, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("advice cache read failed", zap.Error(err))
	}
	if ok && out != nil {
		g.metrics.ObserveGateway(metrics.OutcomeCacheHit, 0)
		return out, nil
	}

	out, err = g.next.Explain(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Set(ctx, key, out); err != nil {
		g.logger.Warn("advice cache write failed", zap.Error(err))
	}
	return out, nil
}
