package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safebite/internal/config"
	"safebite/internal/llm"
	"safebite/internal/port"
)

// stubGateway is a minimal ReasoningGateway for testing the factory.
type stubGateway struct {
	model string
}

func (s *stubGateway) Explain(_ context.Context, _ port.ExplainInput) (*port.ExplainOutput, error) {
	return &port.ExplainOutput{Model: s.model}, nil
}

func (s *stubGateway) ExtractText(_ context.Context, _ port.ExtractInput) (string, error) {
	return "milk, sugar", nil
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	llm.RegisterProvider("test-provider", func(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
		return &stubGateway{model: cfg.DefaultModel}, nil
	})

	g, err := llm.NewGateway(&config.ProviderConfig{Provider: "test-provider", DefaultModel: "test-model"})
	require.NoError(t, err)

	out, err := g.Explain(context.Background(), port.ExplainInput{})
	require.NoError(t, err)
	assert.Equal(t, "test-model", out.Model)
}

func TestFactory_UnknownProvider(t *testing.T) {
	g, err := llm.NewGateway(&config.ProviderConfig{Provider: "nonexistent-provider-xyz"})

	assert.Nil(t, g)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown reasoning provider")
}

func TestFactory_Extractor(t *testing.T) {
	llm.RegisterExtractor("test-extractor", func(cfg *config.ProviderConfig) (port.TextExtractor, error) {
		return &stubGateway{}, nil
	})

	x, err := llm.NewExtractor(&config.ProviderConfig{Provider: "test-extractor"})
	require.NoError(t, err)
	text, err := x.ExtractText(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Equal(t, "milk, sugar", text)

	_, err = llm.NewExtractor(&config.ProviderConfig{Provider: "missing"})
	assert.Contains(t, err.Error(), "unknown extraction provider")
}

func TestBuildGateway_Disabled(t *testing.T) {
	g, err := llm.BuildGateway(&config.GatewayConfig{Enabled: false}, nil, nil, nil)

	assert.NoError(t, err)
	assert.Nil(t, g)
}

func TestBuildGateway_Chain(t *testing.T) {
	llm.RegisterProvider("chain-primary", func(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
		return &stubGateway{model: "primary"}, nil
	})
	cfg := &config.GatewayConfig{
		Enabled:   true,
		RateLimit: 100,
		RateBurst: 10,
		Primary:   config.ProviderConfig{Provider: "chain-primary"},
	}

	g, err := llm.BuildGateway(cfg, nil, nil, nil)
	require.NoError(t, err)

	out, err := g.Explain(context.Background(), port.ExplainInput{Product: "x"})
	require.NoError(t, err)
	assert.Equal(t, "primary", out.Model)
}

func TestBuildGateway_UnknownSecondary(t *testing.T) {
	llm.RegisterProvider("chain-primary", func(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
		return &stubGateway{}, nil
	})
	cfg := &config.GatewayConfig{
		Enabled:   true,
		Primary:   config.ProviderConfig{Provider: "chain-primary"},
		Secondary: config.ProviderConfig{Provider: "nope"},
	}

	_, err := llm.BuildGateway(cfg, nil, nil, nil)
	assert.Error(t, err)
}
