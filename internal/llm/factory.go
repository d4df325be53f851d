package llm

import (
	"fmt"

	"safebite/internal/config"
	"safebite/internal/port"
)

// GatewayFactory creates a ReasoningGateway from a provider config.
type GatewayFactory func(cfg *config.ProviderConfig) (port.ReasoningGateway, error)

// ExtractorFactory creates a TextExtractor from a provider config.
type ExtractorFactory func(cfg *config.ProviderConfig) (port.TextExtractor, error)

// registries of provider factories, populated explicitly via Register*.
var (
	gateways   = map[string]GatewayFactory{}
	extractors = map[string]ExtractorFactory{}
)

// RegisterProvider registers a reasoning gateway factory by name.
func RegisterProvider(name string, factory GatewayFactory) {
	gateways[name] = factory
}

// RegisterExtractor registers a text extractor factory by name.
func RegisterExtractor(name string, factory ExtractorFactory) {
	extractors[name] = factory
}

// NewGateway creates a ReasoningGateway using the registered factory.
func NewGateway(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
	factory, ok := gateways[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown reasoning provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewExtractor creates a TextExtractor using the registered factory.
func NewExtractor(cfg *config.ProviderConfig) (port.TextExtractor, error) {
	factory, ok := extractors[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
