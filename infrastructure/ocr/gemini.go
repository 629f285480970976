package ocr

import (
	"context"
	"strings"
	"time"

	"github.com/claimsdesk/fnol/infrastructure/provider"
	"google.golang.org/genai"
)

const transcribePrompt = "Transcribe all text in this document exactly as written. " +
	"Return plain text only, with no commentary and no markdown. " +
	"Separate pages with a form feed character."

// GeminiConfig configures GeminiEngine.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiEngine transcribes documents with a Gemini vision model.
type GeminiEngine struct {
	client *genai.Client
	model  string
}

// NewGeminiEngine creates a GeminiEngine.
func NewGeminiEngine(ctx context.Context, cfg GeminiConfig) (*GeminiEngine, error) {
	client, err := provider.NewGeminiClient(ctx, provider.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = provider.DefaultGeminiModel
	}
	return &GeminiEngine{client: client, model: model}, nil
}

// Recognize implements Engine.
func (e *GeminiEngine) Recognize(ctx context.Context, data []byte, mimeType string) ([]string, error) {
	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
				{Text: transcribePrompt},
			},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
	})
	if err != nil {
		return nil, err
	}

	text, err := provider.CandidateText(resp)
	if err != nil {
		return nil, err
	}
	return strings.Split(text, "\f"), nil
}

var _ Engine = (*GeminiEngine)(nil)
