package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claimsdesk/fnol/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatServer mimics the OpenAI chat completions endpoint. It answers
// with content, or with status when status is not 200, and counts requests.
func fakeChatServer(t *testing.T, counter *atomic.Int64, status int, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "upstream unavailable", "type": "server_error"},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  body.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
		})
	}))
}

func TestOpenAIProvider_ChatCompletion(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusOK, "Police Report")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		ChatModel: "test-model",
	})

	req := NewChatCompletionRequest([]Message{UserMessage("classify this")}).WithMaxTokens(20)
	resp, err := p.ChatCompletion(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Police Report", resp.Content())
	assert.Equal(t, "stop", resp.FinishReason())
	assert.Equal(t, 15, resp.Usage().TotalTokens())
	assert.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_NoRetryByDefault(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusServiceUnavailable, "")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusServiceUnavailable, perr.StatusCode())
	assert.Equal(t, "chat_completion", perr.Operation())
	assert.Equal(t, int64(1), counter.Load(), "zero retries means a single attempt")
}

func TestOpenAIProvider_RetriesWhenConfigured(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusBadGateway, "")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:        "test-key",
		BaseURL:       srv.URL,
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1,
	})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int64(3), counter.Load())
}

func TestOpenAIProvider_ClientErrorNotRetried(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusBadRequest, "")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
	})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)
	assert.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_CancelledContext(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, http.StatusOK, "ok")
	defer srv.Close()

	p := NewOpenAIProviderFromConfig(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ChatCompletion(ctx, NewChatCompletionRequest([]Message{UserMessage("hi")}))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), counter.Load())
}

func TestNew_SelectsProvider(t *testing.T) {
	_, err := New(context.Background(), config.NewEndpoint())
	assert.ErrorIs(t, err, ErrNotConfigured)

	p, err := New(context.Background(), config.NewEndpointWithOptions(
		config.WithModel("gpt-4o-mini"),
		config.WithBaseURL("http://127.0.0.1:1"),
	))
	require.NoError(t, err)
	assert.IsType(t, &OpenAIProvider{}, p)

	_, err = New(context.Background(), config.NewEndpointWithOptions(
		config.WithModel("x"),
		config.WithProvider("bedrock"),
	))
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}
