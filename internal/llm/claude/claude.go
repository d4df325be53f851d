// Package claude talks to the Anthropic Messages API for label text
// extraction and allergen advice.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"safebite/internal/config"
	"safebite/internal/llm"
	"safebite/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

// Client implements port.ReasoningGateway and port.TextExtractor.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a Claude client from a provider config.
func NewClient(cfg *config.ProviderConfig) *Client {
	return newClient(cfg, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.ProviderConfig, endpoint string) *Client {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) Explain(ctx context.Context, input port.ExplainInput) (*port.ExplainOutput, error) {
	blocks := []map[string]interface{}{
		{"type": "text", "text": llm.BuildAdvicePrompt(input)},
	}
	text, err := c.send(ctx, blocks, 1024)
	if err != nil {
		return nil, err
	}
	return llm.ParseAdvice(text, c.model), nil
}

func (c *Client) ExtractText(ctx context.Context, input port.ExtractInput) (string, error) {
	blocks, err := buildContentBlocks(input, llm.BuildExtractionPrompt())
	if err != nil {
		return "", fmt.Errorf("building content blocks: %w", err)
	}
	return c.send(ctx, blocks, 8192)
}

func (c *Client) send(ctx context.Context, blocks []map[string]interface{}, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"model":      c.model,
		"max_tokens": maxTokens,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": blocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", llm.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return "", baseErr
	}

	return parseResponse(respBody)
}

func buildContentBlocks(input port.ExtractInput, prompt string) ([]map[string]interface{}, error) {
	encoded := base64.StdEncoding.EncodeToString(input.FileBytes)

	var blocks []map[string]interface{}
	switch input.ContentType {
	case "application/pdf":
		blocks = append(blocks, map[string]interface{}{
			"type": "document",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": "application/pdf",
				"data":       encoded,
			},
		})
	case "image/jpeg", "image/png":
		blocks = append(blocks, map[string]interface{}{
			"type": "image",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": input.ContentType,
				"data":       encoded,
			},
		})
	default:
		return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})
	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
