// Package main provides the CLI entry point for the Pilot browser-automation
// agent service.
//
// Pilot drives a headless (or headed) browser through an LLM-directed
// action loop to complete a natural-language task, then streams its
// progress back over SSE and can convert the resulting step history into a
// runnable Playwright test script.
//
// # Basic Usage
//
// Start the server:
//
//	pilot serve --config pilot.yaml
//
// # Environment Variables
//
// Configuration can be provided via environment variables:
//
//   - GEMINI_API_KEY: Gemini API key, used when no apiKey is supplied per request
//   - PERPLEXITY_API_KEY: Perplexity API key
//   - HUGGINGFACE_API_KEY: Hugging Face API key
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wayfarerhq/pilot/internal/config"
	"github.com/wayfarerhq/pilot/internal/httpapi"
	"github.com/wayfarerhq/pilot/internal/profile"
)

// Build-time metadata, injected via:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var profileName string

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pilot",
		Short: "Pilot - LLM-directed browser automation agent",
		Long: `Pilot drives a browser through an LLM-directed action loop to complete a
natural-language task, streaming progress over SSE and generating a
runnable test script from the resulting step history.

Supported LLM providers: Gemini, Perplexity, Hugging Face
Supported test framework: Playwright

Documentation: https://github.com/wayfarerhq/pilot`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Profile name (uses ~/.nexus/profiles/<name>.yaml; or set PILOT_PROFILE)")

	rootCmd.AddCommand(
		buildServeCmd(),
	)

	return rootCmd
}

func resolveConfigPath(path string) string {
	activeProfile := strings.TrimSpace(profileName)
	if activeProfile == "" {
		activeProfile = strings.TrimSpace(os.Getenv("PILOT_PROFILE"))
	}
	if activeProfile != "" {
		return profile.ProfileConfigPath(activeProfile)
	}
	if strings.TrimSpace(path) == "" || path == profile.DefaultConfigName {
		return profile.DefaultConfigPath()
	}
	return path
}

func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Pilot agent server",
		Long: `Start the Pilot HTTP/SSE server.

The server will:
1. Load configuration from the specified file (or nexus.yaml)
2. Start the browser-agent HTTP server (run, stop, list-sessions, generate-code, health)

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		Example: `  # Start with default config
  pilot serve

  # Start with custom config
  pilot serve --config /etc/pilot/production.yaml

  # Start with debug logging
  pilot serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath = resolveConfigPath(configPath)
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", profile.DefaultConfigPath(),
		"Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false,
		"Enable debug logging (verbose output)")

	return cmd
}

// runServe implements the serve command logic: configuration loading,
// starting the browser-agent HTTP server, and graceful shutdown.
func runServe(ctx context.Context, configPath string, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting pilot agent server",
		"version", version,
		"commit", commit,
		"config", configPath,
		"debug", debug,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := httpapi.New(cfg.BrowserAgent, cfg.Tracing, logger)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start browser-agent server: %w", err)
	}

	logger.Info("pilot agent server started")

	<-ctx.Done()
	logger.Info("shutdown signal received, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("browser-agent server shutdown error", "error", err)
	}

	logger.Info("pilot agent server stopped gracefully")
	return nil
}
