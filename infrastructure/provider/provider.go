// Package provider wraps the language model services behind a single
// text generation contract.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/claimsdesk/fnol/internal/config"
)

// Common errors.
var (
	// ErrNotConfigured indicates no model was configured for the endpoint.
	ErrNotConfigured = errors.New("llm endpoint not configured")

	// ErrUnsupportedProvider indicates an unknown provider kind.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")

	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty response")
)

// Message represents a chat message.
type Message struct {
	role    string
	content string
}

// NewMessage creates a new Message.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// Role returns the message role (e.g., "system", "user", "assistant").
func (m Message) Role() string { return m.role }

// Content returns the message content.
func (m Message) Content() string { return m.content }

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return NewMessage("user", content)
}

// ChatCompletionRequest represents a request for text generation.
type ChatCompletionRequest struct {
	messages  []Message
	maxTokens int
}

// NewChatCompletionRequest creates a new ChatCompletionRequest.
func NewChatCompletionRequest(messages []Message) ChatCompletionRequest {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return ChatCompletionRequest{messages: msgs}
}

// WithMaxTokens returns a new request with the specified max tokens.
func (r ChatCompletionRequest) WithMaxTokens(n int) ChatCompletionRequest {
	r.maxTokens = n
	return r
}

// Messages returns the messages.
func (r ChatCompletionRequest) Messages() []Message {
	msgs := make([]Message, len(r.messages))
	copy(msgs, r.messages)
	return msgs
}

// MaxTokens returns the max tokens setting (0 means provider default).
func (r ChatCompletionRequest) MaxTokens() int { return r.maxTokens }

// ChatCompletionResponse represents a text generation response.
type ChatCompletionResponse struct {
	content      string
	finishReason string
	usage        Usage
}

// NewChatCompletionResponse creates a new ChatCompletionResponse.
func NewChatCompletionResponse(content, finishReason string, usage Usage) ChatCompletionResponse {
	return ChatCompletionResponse{
		content:      content,
		finishReason: finishReason,
		usage:        usage,
	}
}

// Content returns the generated content.
func (r ChatCompletionResponse) Content() string { return r.content }

// FinishReason returns why generation stopped.
func (r ChatCompletionResponse) FinishReason() string { return r.finishReason }

// Usage returns token usage information.
func (r ChatCompletionResponse) Usage() Usage { return r.usage }

// Usage represents token usage information.
type Usage struct {
	promptTokens     int
	completionTokens int
	totalTokens      int
}

// NewUsage creates a new Usage.
func NewUsage(prompt, completion, total int) Usage {
	return Usage{
		promptTokens:     prompt,
		completionTokens: completion,
		totalTokens:      total,
	}
}

// PromptTokens returns the number of prompt tokens.
func (u Usage) PromptTokens() int { return u.promptTokens }

// CompletionTokens returns the number of completion tokens.
func (u Usage) CompletionTokens() int { return u.completionTokens }

// TotalTokens returns the total number of tokens.
func (u Usage) TotalTokens() int { return u.totalTokens }

// TextGenerator generates text completions.
type TextGenerator interface {
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)
}

// Provider is a TextGenerator that holds resources.
type Provider interface {
	TextGenerator
	Close() error
}

// ProviderError wraps provider errors with additional context.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a new ProviderError.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.cause != nil && e.cause.Error() != e.message {
		return e.operation + ": " + e.message + ": " + e.cause.Error()
	}
	return e.operation + ": " + e.message
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.cause }

// Operation returns the operation that failed.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status code if available.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Message returns the error message.
func (e *ProviderError) Message() string { return e.message }

// New builds the provider selected by the endpoint configuration.
func New(ctx context.Context, endpoint config.Endpoint) (Provider, error) {
	if !endpoint.IsConfigured() {
		return nil, ErrNotConfigured
	}

	switch endpoint.Provider() {
	case config.LLMProviderOpenAI, "":
		return NewOpenAIProviderFromConfig(OpenAIConfig{
			APIKey:        endpoint.APIKey(),
			BaseURL:       endpoint.BaseURL(),
			ChatModel:     endpoint.Model(),
			Timeout:       endpoint.Timeout(),
			MaxRetries:    endpoint.MaxRetries(),
			InitialDelay:  endpoint.InitialDelay(),
			BackoffFactor: endpoint.BackoffFactor(),
		}), nil
	case config.LLMProviderGemini:
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:  endpoint.APIKey(),
			BaseURL: endpoint.BaseURL(),
			Model:   endpoint.Model(),
			Timeout: endpoint.Timeout(),
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, endpoint.Provider())
	}
}
