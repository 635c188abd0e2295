// Package main implements auto-assign, a CI helper that picks reviewers and
// assignees for the pull request or issue that triggered the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/yuxiqian/auto-assign/pkg/assign"
	"github.com/yuxiqian/auto-assign/pkg/config"
	"github.com/yuxiqian/auto-assign/pkg/event"
	"github.com/yuxiqian/auto-assign/pkg/github"
)

var (
	configPath = flag.String("config", "", "Path to the YAML configuration file (default: INPUT_CONFIGURATION-PATH or .github/auto_assign.yml)")
	dryRun     = flag.Bool("dry-run", false, "Log selections without submitting them")
	logJSON    = flag.Bool("log-json", false, "Emit logs as JSON")
	logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Assigns reviewers and assignees for the triggering pull request or issue.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_TOKEN         - Access token for platform calls (required unless using app auth)\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_APP_ID        - GitHub App ID (app auth)\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_APP_KEY       - GitHub App private key content (app auth)\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_APP_KEY_PATH  - Path to GitHub App private key file (app auth)\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_EVENT_NAME    - Name of the triggering event\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_EVENT_PATH    - Path to the event payload file\n")
	fmt.Fprintf(os.Stderr, "  GITHUB_REPOSITORY    - Repository as owner/repo\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	setupLogging(*logJSON, *logLevel)

	// Local development convenience; CI environments provide real env vars.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env file")
	}

	if err := run(context.Background()); err != nil {
		slog.Error("auto-assign failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ev, err := event.Read()
	if err != nil {
		return fmt.Errorf("failed to read event context: %w", err)
	}

	client, err := github.New(ctx, github.Config{
		Token:      os.Getenv("GITHUB_TOKEN"),
		AppID:      os.Getenv("GITHUB_APP_ID"),
		AppKey:     os.Getenv("GITHUB_APP_KEY"),
		AppKeyPath: os.Getenv("GITHUB_APP_KEY_PATH"),
		Owner:      ev.Owner,
		Repo:       ev.Repo,
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	slog.Info("Dispatching event", "event", ev.Name, "action", ev.Action,
		"repository", ev.Owner+"/"+ev.Repo, "number", ev.Number(), "dry_run", *dryRun)

	assigner := assign.New(client, cfg, assign.WithDryRun(*dryRun))
	return assigner.Run(ctx, ev)
}

// setupLogging installs the default slog handler.
func setupLogging(jsonOutput bool, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
