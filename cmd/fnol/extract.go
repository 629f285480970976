package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claimsdesk/fnol/infrastructure/decoder"
	"github.com/claimsdesk/fnol/internal/log"
)

func extractCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		subject    string
		body       string
	)

	cmd := &cobra.Command{
		Use:   "extract [FILE...]",
		Short: "Extract claim fields from local files without storing anything",
		Long: `Run text recognition over the given files and extract claim fields
with the configured language model. The result is printed as JSON.

No work item or attachment is stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd, envFile, configFile, subject, body, args)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&body, "body", "", "Email body")

	return cmd
}

type extractOutput struct {
	Files           []extractedFile `json:"files"`
	ExtractedFields any             `json:"extracted_fields"`
}

type extractedFile struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Chars    int    `json:"chars"`
}

func runExtract(ctx context.Context, cmd *cobra.Command, envFile, configFile, subject, body string, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(paths) == 0 && strings.TrimSpace(subject) == "" && strings.TrimSpace(body) == "" {
		return fmt.Errorf("nothing to extract: pass files, --subject or --body")
	}

	cfg, err := loadConfig(envFile, configFile)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	slogger := log.NewLogger(cfg).Slog()

	client, err := newClient(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	out := extractOutput{Files: make([]extractedFile, 0, len(paths))}
	var texts []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		mimeType := decoder.MimeType(name, "")
		text := client.Text.Extract(ctx, data, mimeType)
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
		out.Files = append(out.Files, extractedFile{Filename: name, MimeType: mimeType, Chars: len(text)})
	}

	out.ExtractedFields = client.Fields.ExtractFields(ctx, subject, body, strings.Join(texts, "\n\n"))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
