// Package ocr extracts plain text from image and PDF attachments.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claimsdesk/fnol/internal/config"
)

// ErrNoText indicates the engine recognised nothing.
var ErrNoText = errors.New("no text recognised")

// Engine recognises text in a document, returning one string per page.
type Engine interface {
	Recognize(ctx context.Context, data []byte, mimeType string) ([]string, error)
}

var supported = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/bmp":       {},
	"image/tiff":      {},
	"image/heif":      {},
	"image/heic":      {},
	"image/webp":      {},
	"image/gif":       {},
}

// Supports reports whether mimeType is sent to the OCR engine.
func Supports(mimeType string) bool {
	_, ok := supported[strings.ToLower(mimeType)]
	return ok
}

// Extractor runs an Engine with a timeout and never fails: any engine
// error yields empty text.
type Extractor struct {
	engine  Engine
	timeout time.Duration
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. A nil engine disables OCR.
func NewExtractor(engine Engine, timeout time.Duration, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = config.DefaultOCRTimeout
	}
	return &Extractor{engine: engine, timeout: timeout, logger: logger}
}

// Enabled reports whether an engine is configured.
func (e *Extractor) Enabled() bool {
	return e.engine != nil
}

// Extract returns the recognised text, pages joined by newlines, or ""
// when the type is unsupported, no engine is configured, or recognition fails.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) string {
	if e.engine == nil || len(data) == 0 || !Supports(mimeType) {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	pages, err := e.recognize(ctx, data, mimeType)
	if err != nil {
		e.logger.WarnContext(ctx, "ocr.failed",
			slog.String("mime_type", mimeType),
			slog.Int("bytes", len(data)),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return ""
	}

	text := JoinPages(pages)
	e.logger.DebugContext(ctx, "ocr.completed",
		slog.String("mime_type", mimeType),
		slog.Int("pages", len(pages)),
		slog.Int("chars", len(text)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return text
}

// recognize converts engine panics into errors so a faulty engine cannot
// take the pipeline down.
func (e *Extractor) recognize(ctx context.Context, data []byte, mimeType string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ocr engine panic: %v", r)
		}
	}()
	return e.engine.Recognize(ctx, data, mimeType)
}

// JoinPages joins the non-blank pages with newlines.
func JoinPages(pages []string) string {
	kept := make([]string, 0, len(pages))
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

// NewEngine builds the engine selected by cfg. It returns nil when OCR is disabled.
func NewEngine(ctx context.Context, cfg config.OCRConfig, logger *slog.Logger) (Engine, error) {
	switch cfg.Provider() {
	case config.OCRProviderNone, "":
		return nil, nil
	case config.OCRProviderTesseract:
		return NewTesseractEngine(TesseractConfig{
			Tesseract: cfg.TesseractBinary(),
			Pdftotext: cfg.PdftotextBinary(),
			Pdftoppm:  cfg.PdftoppmBinary(),
			Language:  cfg.Language(),
			DPI:       cfg.DPI(),
		}, logger), nil
	case config.OCRProviderGemini:
		return NewGeminiEngine(ctx, GeminiConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.Endpoint(),
			Model:   cfg.Model(),
			Timeout: cfg.Timeout(),
		})
	case config.OCRProviderAzure:
		return NewAzureEngine(AzureConfig{
			Endpoint: cfg.Endpoint(),
			APIKey:   cfg.APIKey(),
			Timeout:  cfg.Timeout(),
		})
	default:
		return nil, fmt.Errorf("unsupported ocr provider: %s", cfg.Provider())
	}
}
