package llm

import (
	"fmt"

	"go.uber.org/zap"

	"safebite/internal/config"
	"safebite/internal/metrics"
	"safebite/internal/port"
)

// BuildGateway assembles the configured providers into one gateway:
// cache, then instrumentation, then rate limiting, then ordered fallback.
// cache may be nil. It returns nil when the gateway is disabled.
func BuildGateway(cfg *config.GatewayConfig, cache port.AdviceCache, m *metrics.Metrics, logger *zap.Logger) (port.ReasoningGateway, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	primary, err := NewGateway(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("creating primary reasoning provider: %w", err)
	}
	providers := []port.ReasoningGateway{primary}
	names := []string{cfg.Primary.Provider}

	if sec := cfg.SecondaryConfig(); sec != nil {
		secondary, err := NewGateway(sec)
		if err != nil {
			return nil, fmt.Errorf("creating secondary reasoning provider: %w", err)
		}
		providers = append(providers, secondary)
		names = append(names, sec.Provider)
	}

	var gw port.ReasoningGateway = NewFallbackGateway(providers, names, logger)
	gw = NewRateLimitedGateway(gw, cfg.RateLimit, cfg.RateBurst)
	gw = NewInstrumentedGateway(gw, m)
	if cache != nil {
		gw = NewCachedGateway(gw, cache, m, logger)
	}
	return gw, nil
}
