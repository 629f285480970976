// Package main is the entry point for the fnol CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/claimsdesk/fnol/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fnol",
		Short: "First notice of loss intake service",
		Long:  `fnol turns claim notification emails into tracked work items with extracted claim fields and classified attachments.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(extractCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env and YAML files and environment
// variables. CONFIG_FILE names the YAML file when --config is not given.
func loadConfig(envFile, configFile string) (config.AppConfig, error) {
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadConfig(envFile, configFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
