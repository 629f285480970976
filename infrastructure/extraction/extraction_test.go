package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	content string
	err     error
	prompts []string
}

func (f *fakeGenerator) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	for _, m := range req.Messages() {
		f.prompts = append(f.prompts, m.Content())
	}
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.content, "stop", provider.NewUsage(0, 0, 0)), nil
}

func TestExtractFields_ParsesFencedJSON(t *testing.T) {
	gen := &fakeGenerator{content: "```json\n{\"summary\": \"Rear-end collision\", \"claim_type\": {\"category\": \"Auto\"}}\n```"}
	e := NewExtractor(gen)

	fields := e.ExtractFields(context.Background(), "Car accident", "I was rear-ended", "POLICE REPORT")

	require.False(t, fields.IsDegraded())
	summary, _ := fields.Get("summary")
	assert.Equal(t, "Rear-end collision", summary)
	assert.Equal(t, "Auto", fields.ClaimCategory())

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Email Subject: Car accident")
	assert.Contains(t, gen.prompts[0], "Email Body: I was rear-ended")
	assert.Contains(t, gen.prompts[0], "Attachment Text: POLICE REPORT")
	assert.Contains(t, gen.prompts[0], "lawsuit_or_complaint_received: bool")
}

func TestExtractFields_CallFailureDegrades(t *testing.T) {
	e := NewExtractor(&fakeGenerator{err: errors.New("deadline exceeded")})

	fields := e.ExtractFields(context.Background(), "s", "b", "")

	require.True(t, fields.IsDegraded())
	msg, _ := fields.Get(workitem.FieldError)
	assert.Contains(t, msg, "deadline exceeded")
	raw, ok := fields.Get(workitem.FieldLLMResponse)
	assert.True(t, ok)
	assert.Nil(t, raw)
}

func TestExtractFields_InvalidJSONKeepsRawResponse(t *testing.T) {
	e := NewExtractor(&fakeGenerator{content: "Sorry, I cannot help with that."})

	fields := e.ExtractFields(context.Background(), "s", "b", "")

	require.True(t, fields.IsDegraded())
	raw, _ := fields.Get(workitem.FieldLLMResponse)
	assert.Equal(t, "Sorry, I cannot help with that.", raw)
}

func TestExtractFields_NonObjectDegrades(t *testing.T) {
	e := NewExtractor(&fakeGenerator{content: "[1, 2, 3]"})
	assert.True(t, e.ExtractFields(context.Background(), "s", "b", "").IsDegraded())
}

func TestExtractFields_NoGenerator(t *testing.T) {
	fields := NewExtractor(nil).ExtractFields(context.Background(), "s", "b", "")
	require.True(t, fields.IsDegraded())
	msg, _ := fields.Get(workitem.FieldError)
	assert.Equal(t, ErrNoGenerator.Error(), msg)
}

func TestExtractFields_SchemaMismatchIsAdvisory(t *testing.T) {
	e := NewExtractor(&fakeGenerator{content: `{"claimants_count": "two"}`})

	fields := e.ExtractFields(context.Background(), "s", "b", "")
	assert.False(t, fields.IsDegraded())
	v, _ := fields.Get("claimants_count")
	assert.Equal(t, "two", v)
}

func TestUnfence(t *testing.T) {
	tests := map[string]string{
		"{\"a\":1}":               "{\"a\":1}",
		"```json\n{\"a\":1}\n```": "{\"a\":1}",
		"```\n{\"a\":1}\n```\n":   "{\"a\":1}",
		"  ```JSON\n{}\n```  ":    "{}",
		"```json\n{\"a\":1}":      "{\"a\":1}",
		"prefix ```json\n{}\n```": "prefix ```json\n{}\n```",
	}
	for in, want := range tests {
		assert.Equal(t, want, Unfence(in), in)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(map[string]any{
		"summary":         "x",
		"claimants_count": float64(2),
		"reply_to_emails": []any{"a@b.c"},
		"intent":          nil,
	}))

	err := Validate(map[string]any{"lawsuit_or_complaint_received": "yes"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "lawsuit_or_complaint_received"))
}
