package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/habitkit/go-habitkit/internal/apierr"
	"github.com/habitkit/go-habitkit/internal/cli"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitGeneral   = 1
	ExitUsage     = 2
	ExitSetup     = 3
	ExitAuth      = 4
	ExitAPI       = 5
	ExitInterrupt = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	setupLogging()

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			Environment:      os.Getenv("HABITKIT_ENV"),
			AttachStacktrace: true,
		}); err != nil {
			fmt.Fprintln(os.Stderr, "sentry init failed:", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "habitkit",
		Short:   "Track behavior episodes and coping strategies",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.LoginCmd(env))
	rootCmd.AddCommand(cli.RegisterCmd(env))
	rootCmd.AddCommand(cli.LogoutCmd(env))
	rootCmd.AddCommand(cli.WhoamiCmd(env))
	rootCmd.AddCommand(cli.InstancesCmd(env))
	rootCmd.AddCommand(cli.StrategiesCmd(env))
	rootCmd.AddCommand(cli.SummaryCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// setupLogging installs the default structured logger. HABITKIT_LOG_LEVEL
// accepts debug, info, warn, error.
func setupLogging() {
	level := slog.LevelWarn
	switch strings.ToLower(os.Getenv("HABITKIT_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors: Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: configuration or wiring.
	if errors.Is(err, cli.ErrConfig) {
		return ExitSetup
	}

	// Authentication errors.
	if errors.Is(err, apierr.ErrAuthFailed) || errors.Is(err, cli.ErrNotLoggedIn) {
		return ExitAuth
	}

	// API errors: everything the orchestrator classifies.
	if errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrNetwork) ||
		errors.Is(err, apierr.ErrServer) || errors.Is(err, apierr.ErrMalformedResponse) {
		return ExitAPI
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
