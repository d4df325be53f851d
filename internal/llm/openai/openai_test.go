package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safebite/internal/config"
	"safebite/internal/domain"
	"safebite/internal/llm"
	"safebite/internal/llm/openai"
	"safebite/internal/port"
)

func chatResponse(content string) string {
	resp := map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-test",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func testConfig() *config.ProviderConfig {
	return &config.ProviderConfig{Provider: "openai", APIKey: "test-key", DefaultModel: "gpt-test", TimeoutSecs: 5}
}

func TestClient_Explain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Satay")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse("Verdict: Unsafe\nAllergens: peanut\nExplanation: Satay sauce is peanut based.")))
	}))
	defer server.Close()

	c := openai.NewClientWithBaseURL(testConfig(), server.URL+"/v1")
	out, err := c.Explain(context.Background(), port.ExplainInput{Product: "Satay", Allergens: []string{"peanut"}})

	require.NoError(t, err)
	assert.Equal(t, "gpt-test", out.Model)
	assert.Equal(t, []string{"peanut"}, out.Allergens)
	require.NotNil(t, out.VerdictHint)
	assert.Equal(t, domain.VerdictUnsafe, *out.VerdictHint)
}

func TestClient_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	c := openai.NewClientWithBaseURL(testConfig(), server.URL+"/v1")
	_, err := c.Explain(context.Background(), port.ExplainInput{Product: "x"})

	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	}))
	defer server.Close()

	c := openai.NewClientWithBaseURL(testConfig(), server.URL+"/v1")
	_, err := c.Explain(context.Background(), port.ExplainInput{Product: "x"})

	assert.ErrorContains(t, err, "no choices")
}
