package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/claimsdesk/fnol/internal/log"
	"github.com/claimsdesk/fnol/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants browse work items and claim analytics.
Configuration is loaded from environment variables, .env and YAML files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd.Context(), envFile, configFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to YAML configuration file")

	return cmd
}

func runStdio(ctx context.Context, envFile, configFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(envFile, configFile)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Logs go to stderr; stdout carries the protocol.
	slogger := log.NewLogger(cfg).Slog()

	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	client, err := newClient(ctx, cfg, slogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close fnol client", slog.Any("error", err))
		}
	}()

	return mcp.NewServer(client.WorkItems, client.Analytics, version, slogger).ServeStdio()
}
