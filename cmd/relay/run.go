package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/relay/internal/app"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/domain/settings"
	"github.com/felixgeelhaar/relay/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a pipeline against an environment",
	Long: `Run executes the named pipeline from the definition file against one
environment profile.

Steps run strictly in order. A fatal step failure halts the run; notify
failures and skips do not. The run's report is persisted and can be
inspected later with 'relay status'.

Exit codes: 0 completed, 2 definition or validation error, 3 halted on a
fatal failure, 4 cancelled.`,
	RunE: runRun,
}

var (
	runPipeline    string
	runEnvironment string
	runDryRun      bool
	runForce       bool
	runNoInput     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runPipeline, "pipeline", "p", "", "pipeline to run")
	runCmd.Flags().StringVarP(&runEnvironment, "environment", "e", "", "environment profile to run against")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "simulate the run without touching external systems")
	runCmd.Flags().BoolVar(&runForce, "force", false, "record failing analyze steps as skipped instead of halting")
	runCmd.Flags().BoolVar(&runNoInput, "no-input", false, "disable the interactive run view")

	_ = runCmd.MarkFlagRequired("pipeline")
	_ = runCmd.MarkFlagRequired("environment")
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := settings.Load(settingsFile)
	if err != nil {
		return err
	}

	service := newService(cfg)
	printer := newPrinter(cfg)

	req := app.RunRequest{
		ConfigPath:       cfgFile,
		EnvironmentsPath: envsFile,
		Pipeline:         runPipeline,
		Environment:      runEnvironment,
		DryRun:           runDryRun,
		Force:            runForce,
	}

	var report pipeline.RunReport
	if useLiveView() {
		report, err = runWithLiveView(ctx, service, req)
	} else {
		req.Observer = printer
		report, err = service.Run(ctx, req)
	}
	if err != nil {
		return err
	}

	printer.PrintReport(report)

	switch report.Status {
	case pipeline.RunHaltedFatal:
		exitCode = exitHalted
	case pipeline.RunCancelled:
		exitCode = exitCancelled
	}
	return nil
}

// useLiveView reports whether the interactive run view should render.
func useLiveView() bool {
	if runNoInput {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// runWithLiveView executes the run behind a bubbletea view. The run itself
// happens in a goroutine; progress flows into the view through the observer.
func runWithLiveView(ctx context.Context, service *app.Service, req app.RunRequest) (pipeline.RunReport, error) {
	program := tea.NewProgram(tui.NewModel(req.Pipeline, req.Environment, req.DryRun))
	req.Observer = tui.NewObserver(program)

	done := make(chan struct{})
	var (
		report pipeline.RunReport
		runErr error
	)
	go func() {
		defer close(done)
		report, runErr = service.Run(ctx, req)
		if runErr != nil {
			program.Quit()
			return
		}
		program.Send(tui.RunFinishedMsg{Status: report.Status})
	}()

	// The run must finish even when the view cannot render; the view error
	// is secondary to the run's outcome.
	_, viewErr := program.Run()
	<-done
	if runErr == nil && report.RunID == "" && viewErr != nil {
		return report, viewErr
	}
	return report, runErr
}
