package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiProvider implements text generation with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	client, err := NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// NewGeminiClient creates a genai client for the Gemini API backend.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// Close is a no-op; the genai client holds no closable resources.
func (p *GeminiProvider) Close() error {
	return nil
}

// ChatCompletion generates a completion. System messages become the
// system instruction; the rest are sent as user or model turns.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	var contents []*genai.Content
	var system []string

	for _, m := range req.Messages() {
		switch m.Role() {
		case "system":
			system = append(system, m.Content())
		case "assistant":
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: m.Content()}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: m.Content()}},
			})
		}
	}

	config := &genai.GenerateContentConfig{}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
		}
	}
	if req.MaxTokens() > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens())
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "gemini request failed", err)
	}

	text, finish, err := candidateText(resp)
	if err != nil {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, err.Error(), err)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage = NewUsage(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.TotalTokenCount),
		)
	}

	return NewChatCompletionResponse(text, finish, usage), nil
}

// candidateText concatenates the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) (string, string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", "", fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", "", fmt.Errorf("%w: no content in candidate", ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}

	return b.String(), string(candidate.FinishReason), nil
}

// CandidateText exposes first-candidate text extraction to other Gemini callers.
func CandidateText(resp *genai.GenerateContentResponse) (string, error) {
	text, _, err := candidateText(resp)
	return text, err
}

var _ Provider = (*GeminiProvider)(nil)
