// Package providers registers the built-in LLM providers with the llm
// factories.
package providers

import (
	"sync"

	"safebite/internal/config"
	"safebite/internal/llm"
	"safebite/internal/llm/claude"
	"safebite/internal/llm/gemini"
	"safebite/internal/llm/openai"
	"safebite/internal/port"
)

var once sync.Once

// Register makes gemini, claude and openai available to llm.NewGateway and
// gemini and claude available to llm.NewExtractor. Safe to call repeatedly.
func Register() {
	once.Do(func() {
		llm.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
			return gemini.NewClient(cfg), nil
		})
		llm.RegisterProvider("claude", func(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
			return claude.NewClient(cfg), nil
		})
		llm.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.ReasoningGateway, error) {
			return openai.NewClient(cfg), nil
		})

		llm.RegisterExtractor("gemini", func(cfg *config.ProviderConfig) (port.TextExtractor, error) {
			return gemini.NewClient(cfg), nil
		})
		llm.RegisterExtractor("claude", func(cfg *config.ProviderConfig) (port.TextExtractor, error) {
			return claude.NewClient(cfg), nil
		})
	})
}
