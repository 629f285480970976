package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/claimsdesk/fnol/internal/config"
)

// TesseractConfig names the local binaries used by TesseractEngine.
type TesseractConfig struct {
	Tesseract string
	Pdftotext string
	Pdftoppm  string
	Language  string
	DPI       int
}

// TesseractEngine recognises text with poppler and tesseract. Digital PDFs
// use their text layer; scanned PDFs are rasterised page by page.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

// NewTesseractEngine creates a TesseractEngine that runs real binaries.
func NewTesseractEngine(cfg TesseractConfig, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return NewTesseractEngineWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewTesseractEngineWithRunner creates a TesseractEngine with a custom Runner.
func NewTesseractEngineWithRunner(cfg TesseractConfig, runner Runner, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = config.DefaultOCRLanguage
	}
	if cfg.DPI <= 0 {
		cfg.DPI = config.DefaultOCRDPI
	}
	return &TesseractEngine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize implements Engine.
func (e *TesseractEngine) Recognize(ctx context.Context, data []byte, mimeType string) ([]string, error) {
	tmpDir, err := os.MkdirTemp("", "fnol-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	in := filepath.Join(tmpDir, "input"+extensionFor(mimeType))
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	if mimeType == "application/pdf" {
		return e.recognizePDF(ctx, in, tmpDir)
	}

	text, err := e.tesseract(ctx, in)
	if err != nil {
		return nil, err
	}
	return []string{text}, nil
}

func (e *TesseractEngine) recognizePDF(ctx context.Context, path, tmpDir string) ([]string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err == nil && strings.TrimSpace(string(out)) != "" {
		return strings.Split(string(out), "\f"), nil
	}
	if err != nil {
		e.logger.DebugContext(ctx, "pdftotext failed, rasterising",
			slog.String("stderr", truncate(string(errb), 512)),
		)
	}

	prefix := filepath.Join(tmpDir, "page")
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm: %w: no pages rendered", ErrNoText)
	}

	pages := make([]string, 0, len(images))
	var failures int
	for _, img := range images {
		text, err := e.tesseract(ctx, img)
		if err != nil {
			failures++
			e.logger.DebugContext(ctx, "page ocr failed", slog.String("page", filepath.Base(img)), slog.String("error", err.Error()))
			continue
		}
		pages = append(pages, text)
	}
	if failures == len(images) {
		return nil, fmt.Errorf("tesseract failed on all %d pages", failures)
	}
	return pages, nil
}

func (e *TesseractEngine) tesseract(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/bmp":
		return ".bmp"
	case "image/tiff":
		return ".tif"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ".bin"
	}
}

var _ Engine = (*TesseractEngine)(nil)
