package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimsdesk/fnol/infrastructure/api"
	"github.com/claimsdesk/fnol/internal/config"
	"github.com/claimsdesk/fnol/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		host       string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML file (if --config specified)
  3. .env file (if --env-file specified or .env exists in current directory)
  4. Environment variables
  5. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: .fnol)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/fnol.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  CORS_ALLOWED_ORIGINS         Comma-separated list of allowed origins (default: *)

  LLM_ENDPOINT_*               Language model configuration
    PROVIDER                   openai, gemini (default: openai)
    BASE_URL                   Base URL (e.g., https://api.openai.com/v1)
    MODEL                      Model identifier
    API_KEY                    API key for authentication
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 0)
    MAX_TOKENS                 Completion token limit (default: 4000)

  OCR_*                        Text recognition configuration
    PROVIDER                   none, tesseract, gemini, azure (default: none)

  BLOB_*                       Object storage configuration
    PROVIDER                   filesystem, minio, gcs (default: filesystem)

  INTAKE_PARALLELISM           Attachments processed concurrently (default: 4)
  REDIS_URL                    Enables the shared intake lock across replicas`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, configFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, envFile, configFile, host string, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(envFile, configFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(ctx, slog.LevelInfo, "starting fnol", attrs...)

	client, err := newClient(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close fnol client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client,
		api.WithVersion(version),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	addr := cfg.Addr()
	slogger.Info("starting server", slog.String("addr", addr))
	if err := apiServer.ListenAndServe(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
