package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/relay/internal/adapters/command"
	"github.com/felixgeelhaar/relay/internal/adapters/github"
	"github.com/felixgeelhaar/relay/internal/adapters/kubectl"
	"github.com/felixgeelhaar/relay/internal/adapters/logging"
	"github.com/felixgeelhaar/relay/internal/adapters/reportstore"
	"github.com/felixgeelhaar/relay/internal/adapters/terraform"
	"github.com/felixgeelhaar/relay/internal/adapters/webhook"
	"github.com/felixgeelhaar/relay/internal/app"
	"github.com/felixgeelhaar/relay/internal/domain/definition"
	"github.com/felixgeelhaar/relay/internal/domain/environment"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/domain/settings"
	"github.com/felixgeelhaar/relay/internal/ports"
	"github.com/felixgeelhaar/relay/internal/steps"
)

// Process exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitDefinition = 2
	exitHalted     = 3
	exitCancelled  = 4
)

var (
	// Global flags
	cfgFile      string
	envsFile     string
	settingsFile string
	verbose      bool
	noColor      bool
	jsonLogs     bool
)

// exitCode is set by commands whose outcome is not an error but still maps
// to a non-zero exit (halted or cancelled runs).
var exitCode = exitOK

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "A staged deployment-pipeline orchestrator",
	Long: `Relay runs declarative deployment pipelines: ordered steps that analyze,
mutate and validate external systems, sharing state through an execution
context and leaving a durable report behind.

Pipelines are defined in relay.yaml, environments in environments.ini.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return exitCodeFor(err)
	}
	return exitCode
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "relay.yaml", "pipeline definition file")
	rootCmd.PersistentFlags().StringVar(&envsFile, "environments", "environments.ini", "environment profiles file")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default: $RELAY_SETTINGS, then ~/.config/relay/settings.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON lines")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

// newService wires the adapters into the application service.
func newService(cfg settings.Settings) *app.Service {
	runner := command.NewExecRunner()

	return app.NewService(app.Deps{
		VCS:     github.NewClient(runner),
		Cluster: kubectl.NewCluster(runner),
		Infra:   terraform.NewInfra(runner),
		NewNotifier: func(url string) ports.Notifier {
			return webhook.NewNotifier(url)
		},
		Store:    reportstore.NewFileStore(cfg.ReportDir),
		Logger:   newLogger(),
		Settings: cfg,
	})
}

// newLogger builds the console logger from the global flags.
func newLogger() ports.Logger {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	return logging.NewConsoleLogger(
		logging.WithLevel(level),
		logging.WithJSON(jsonLogs),
	)
}

// newPrinter builds the report printer from the global flags and settings.
func newPrinter(cfg settings.Settings) *app.Printer {
	return app.NewPrinter(os.Stdout, noColor || cfg.NoColor)
}

// exitCodeFor maps an error to the process exit code. Definition, pipeline
// construction and environment lookup failures are the caller's input being
// wrong; everything else is an operational error.
func exitCodeFor(err error) int {
	var uerr *definition.UserError
	if errors.As(err, &uerr) {
		return exitDefinition
	}

	for _, target := range []error{
		pipeline.ErrDuplicateStep,
		pipeline.ErrUnsatisfiedRequires,
		pipeline.ErrInvalidKind,
		pipeline.ErrEmptyPipeline,
		pipeline.ErrInvalidStepName,
		steps.ErrUnknownAction,
		environment.ErrProfileNotFound,
		environment.ErrNoProfiles,
	} {
		if errors.Is(err, target) {
			return exitDefinition
		}
	}
	return exitError
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var uerr *definition.UserError
	if errors.As(err, &uerr) {
		msg := uerr.Message
		if uerr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", uerr.Context)
		}
		if uerr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", uerr.Suggestion)
		}
		if verbose && uerr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", uerr.Underlying)
		}
		return msg
	}

	var perr *pipeline.Error
	if errors.As(err, &perr) {
		return perr.Format()
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
