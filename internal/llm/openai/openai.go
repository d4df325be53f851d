// Package openai asks OpenAI chat models for allergen advice.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"safebite/internal/config"
	"safebite/internal/llm"
	"safebite/internal/port"
)

const systemPrompt = "You are a careful food allergy assistant. Never claim a product is safe when you are unsure."

// Client implements port.ReasoningGateway over the Chat Completions API.
type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates an OpenAI client.
func NewClient(cfg *config.ProviderConfig) *Client {
	return NewClientWithBaseURL(cfg, "")
}

// NewClientWithBaseURL creates a client pointing at a custom API base URL (for testing).
func NewClientWithBaseURL(cfg *config.ProviderConfig, baseURL string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = goopenai.GPT4oMini
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

func (c *Client) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildAdvicePrompt(input)},
		},
		MaxCompletionTokens: 512,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("openai", err, 0)
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("openai", err, 0)
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	return llm.ParseAdvice(strings.TrimSpace(resp.Choices[0].Message.Content), c.model), nil
}
