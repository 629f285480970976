package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	azureAPIVersion   = "2024-11-30"
	azureReadModel    = "prebuilt-read"
	azurePollInterval = time.Second
)

// ErrAzureAnalyzeFailed indicates the analyze operation finished unsuccessfully.
var ErrAzureAnalyzeFailed = errors.New("azure analyze failed")

// AzureConfig configures AzureEngine.
type AzureConfig struct {
	Endpoint     string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
	HTTPClient   *http.Client
}

// AzureEngine reads documents with the Azure Document Intelligence
// prebuilt-read model: submit, then poll the operation until it finishes.
type AzureEngine struct {
	endpoint     string
	apiKey       string
	pollInterval time.Duration
	client       *http.Client
}

// NewAzureEngine creates an AzureEngine.
func NewAzureEngine(cfg AzureConfig) (*AzureEngine, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, errors.New("azure ocr requires OCR_ENDPOINT and OCR_API_KEY")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = azurePollInterval
	}

	return &AzureEngine{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:       cfg.APIKey,
		pollInterval: poll,
		client:       client,
	}, nil
}

type azureResult struct {
	Status        string `json:"status"`
	AnalyzeResult struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int `json:"pageNumber"`
			Lines      []struct {
				Content string `json:"content"`
			} `json:"lines"`
		} `json:"pages"`
	} `json:"analyzeResult"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Recognize implements Engine.
func (e *AzureEngine) Recognize(ctx context.Context, data []byte, mimeType string) ([]string, error) {
	operation, err := e.submit(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		result, err := e.poll(ctx, operation)
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(result.Status) {
		case "succeeded":
			return pagesFromResult(result), nil
		case "failed", "canceled":
			if result.Error != nil {
				return nil, fmt.Errorf("%w: %s: %s", ErrAzureAnalyzeFailed, result.Error.Code, result.Error.Message)
			}
			return nil, fmt.Errorf("%w: status %s", ErrAzureAnalyzeFailed, result.Status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *AzureEngine) submit(ctx context.Context, data []byte, mimeType string) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		e.endpoint, azureReadModel, azureAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: analyze returned %d: %s", ErrAzureAnalyzeFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	operation := resp.Header.Get("Operation-Location")
	if operation == "" {
		return "", fmt.Errorf("%w: missing Operation-Location header", ErrAzureAnalyzeFailed)
	}
	return operation, nil
}

func (e *AzureEngine) poll(ctx context.Context, operation string) (azureResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operation, nil)
	if err != nil {
		return azureResult{}, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return azureResult{}, fmt.Errorf("poll request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return azureResult{}, fmt.Errorf("%w: poll returned %d: %s", ErrAzureAnalyzeFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result azureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return azureResult{}, fmt.Errorf("decode poll response: %w", err)
	}
	return result, nil
}

func pagesFromResult(result azureResult) []string {
	pages := make([]string, 0, len(result.AnalyzeResult.Pages))
	for _, p := range result.AnalyzeResult.Pages {
		lines := make([]string, 0, len(p.Lines))
		for _, l := range p.Lines {
			lines = append(lines, l.Content)
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	if len(pages) == 0 && result.AnalyzeResult.Content != "" {
		pages = append(pages, result.AnalyzeResult.Content)
	}
	return pages
}

var _ Engine = (*AzureEngine)(nil)
