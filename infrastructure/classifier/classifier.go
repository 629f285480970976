// Package classifier assigns a document type label to each attachment.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/extraction"
	"github.com/claimsdesk/fnol/infrastructure/provider"
)

// ErrUnrecognisedLabel indicates a model answer outside the closed label set.
var ErrUnrecognisedLabel = errors.New("unrecognised document type")

// maxPromptChars caps how much extracted text is sent per attachment.
const maxPromptChars = 12000

const promptTemplate = `You are a document classification assistant.

Your task is to determine the document type based only on the provided text content.

Classify the document into one of the following categories only:

- Claim Form
- Police Report
- Proof of Loss
- Invoice
- Declaration
- Photo
- ID Document
- Other Document

Classification Rules:
- Claim Form: contains insurance claim details, claim number, policy number, claimant information, incident description.
- Police Report: contains police department references, officer names, badge numbers, case/report numbers, incident reports.
- Proof of Loss: contains statements of loss, damage valuation, sworn loss statements, insurance loss summaries.
- Invoice: contains billing details, invoice number, line items, totals, payment terms.
- Declaration: contains formal statements affirming truth, signatures under penalty, sworn declarations.
- Photo: mentions image/photo metadata or indicates the content is a photograph.
- ID Document: contains identity details such as name, date of birth, ID number, license/passport details.

If none clearly apply, return: Other Document.

Instructions:
- Base your answer strictly on the text content.
- Return only the document type label, with no explanation.

Input Text:
"""
%s
"""

Output:`

type keywordRule struct {
	keywords  []string
	wholeWord bool
	docType   workitem.DocType
}

// rules are tested in order; the first match wins.
var rules = []keywordRule{
	{keywords: []string{"claim"}, docType: workitem.DocTypeClaimForm},
	{keywords: []string{"police"}, docType: workitem.DocTypePoliceReport},
	{keywords: []string{"loss"}, docType: workitem.DocTypeProofOfLoss},
	{keywords: []string{"invoice"}, docType: workitem.DocTypeInvoice},
	{keywords: []string{"declaration"}, docType: workitem.DocTypeDeclaration},
	{keywords: []string{"photo", "image"}, docType: workitem.DocTypePhoto},
	{keywords: []string{"id"}, wholeWord: true, docType: workitem.DocTypeIDDocument},
	{keywords: []string{"identity"}, docType: workitem.DocTypeIDDocument},
}

// Classifier asks the language model for a label and falls back to
// keyword matching when the call fails or answers outside the label set.
type Classifier struct {
	generator provider.TextGenerator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClassifier creates a Classifier. A nil generator always uses the fallback.
func NewClassifier(generator provider.TextGenerator, timeout time.Duration, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{generator: generator, timeout: timeout, logger: logger}
}

// Classify returns the document type for one attachment.
func (c *Classifier) Classify(ctx context.Context, text, filename, hint string) workitem.DocType {
	name := strings.ToLower(filename)

	label, err := c.ask(ctx, clip(text, maxPromptChars)+"\n"+name)
	if err == nil {
		return label
	}

	fallback := Fallback(text+"\n"+name, hint)
	c.logger.InfoContext(ctx, "classifier.fallback",
		slog.String("filename", filename),
		slog.String("doc_type", fallback.String()),
		slog.String("reason", err.Error()),
	)
	return fallback
}

func (c *Classifier) ask(ctx context.Context, input string) (workitem.DocType, error) {
	if c.generator == nil {
		return "", errors.New("no language model configured")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	prompt := fmt.Sprintf(promptTemplate, input)
	req := provider.NewChatCompletionRequest([]provider.Message{provider.UserMessage(prompt)}).WithMaxTokens(20)

	resp, err := c.generator.ChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(extraction.Unfence(resp.Content()))
	label, ok := workitem.ParseDocType(answer)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnrecognisedLabel, truncate(answer, 80))
	}
	return label, nil
}

// Fallback classifies by keyword. When no keyword matches, a hint naming a
// known label is used, otherwise Other Document.
func Fallback(input, hint string) workitem.DocType {
	lowered := strings.ToLower(input)
	tokens := tokenSet(lowered)

	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if rule.wholeWord {
				if _, ok := tokens[kw]; ok {
					return rule.docType
				}
				continue
			}
			if strings.Contains(lowered, kw) {
				return rule.docType
			}
		}
	}

	if dt, ok := workitem.ParseDocType(hint); ok {
		return dt
	}
	return workitem.DocTypeOther
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return clip(s, n) + "..."
}

// clip cuts s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
