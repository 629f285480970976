// Package extraction turns email text into structured claim fields with a
// language model.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/provider"
)

// ErrNoGenerator indicates no language model is configured.
var ErrNoGenerator = errors.New("no language model configured")

// Extractor calls the language model once per email. Failures become a
// degraded field set rather than an error.
type Extractor struct {
	generator provider.TextGenerator
	timeout   time.Duration
	maxTokens int
	logger    *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) { e.timeout = d }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) ExtractorOption {
	return func(e *Extractor) { e.maxTokens = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor. A nil generator always degrades.
func NewExtractor(generator provider.TextGenerator, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		generator: generator,
		timeout:   60 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFields implements the field extraction contract.
func (e *Extractor) ExtractFields(ctx context.Context, subject, body, attachmentText string) workitem.Fields {
	raw, err := e.complete(ctx, BuildPrompt(subject, body, attachmentText))
	if err != nil {
		e.logger.WarnContext(ctx, "extraction.degraded", slog.String("error", err.Error()))
		return workitem.DegradedFields(err.Error(), nil)
	}

	values, err := Parse(raw)
	if err != nil {
		e.logger.WarnContext(ctx, "extraction.degraded",
			slog.String("error", err.Error()),
			slog.Int("response_chars", len(raw)),
		)
		return workitem.DegradedFields(err.Error(), &raw)
	}

	if err := Validate(values); err != nil {
		e.logger.WarnContext(ctx, "extraction.schema_mismatch", slog.String("error", err.Error()))
	}

	return workitem.NewFields(values)
}

func (e *Extractor) complete(ctx context.Context, prompt string) (string, error) {
	if e.generator == nil {
		return "", ErrNoGenerator
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req := provider.NewChatCompletionRequest([]provider.Message{provider.UserMessage(prompt)})
	if e.maxTokens > 0 {
		req = req.WithMaxTokens(e.maxTokens)
	}

	resp, err := e.generator.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

// Parse un-fences a model response and decodes it as a JSON object.
func Parse(raw string) (map[string]any, error) {
	text := strings.TrimSpace(Unfence(raw))
	if text == "" {
		return nil, fmt.Errorf("decode model response: %w", provider.ErrEmptyResponse)
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, workitem.ErrFieldsNotObject
	}
	return m, nil
}
