// Package app wires the domain, steps and adapters into the use cases the
// CLI exposes: running a pipeline, inspecting stored reports, and validating
// definitions.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/relay/internal/domain/definition"
	"github.com/felixgeelhaar/relay/internal/domain/environment"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/domain/settings"
	"github.com/felixgeelhaar/relay/internal/ports"
	"github.com/felixgeelhaar/relay/internal/steps"
	"github.com/felixgeelhaar/relay/internal/version"
)

// Deps are the collaborators a Service needs. NewNotifier is a constructor
// rather than an instance because the webhook URL lives in the environment
// profile, which is only known per run.
type Deps struct {
	VCS         ports.VCSHost
	Cluster     ports.Cluster
	Infra       ports.Infra
	NewNotifier func(url string) ports.Notifier
	Store       ports.ReportStore
	Logger      ports.Logger
	Settings    settings.Settings
}

// Service implements the relay use cases.
type Service struct {
	deps Deps
}

// NewService creates a Service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// RunRequest describes one pipeline run.
type RunRequest struct {
	ConfigPath       string
	EnvironmentsPath string
	Pipeline         string
	Environment      string
	DryRun           bool
	Force            bool

	// Observer receives step progress; nil means no progress reporting.
	Observer pipeline.Observer
}

// Run loads the definition and environment, executes the named pipeline and
// persists the resulting report. The returned error covers loading and
// validation only; execution outcomes are reported through the RunReport's
// status.
func (s *Service) Run(ctx context.Context, req RunRequest) (pipeline.RunReport, error) {
	doc, err := definition.NewLoader(version.Version).Load(req.ConfigPath)
	if err != nil {
		return pipeline.RunReport{}, err
	}

	pipelineDef, err := doc.Pipeline(req.Pipeline)
	if err != nil {
		return pipeline.RunReport{}, err
	}

	profiles, err := environment.Load(req.EnvironmentsPath)
	if err != nil {
		return pipeline.RunReport{}, err
	}
	profile, err := profiles.Get(req.Environment)
	if err != nil {
		return pipeline.RunReport{}, err
	}

	factory := steps.NewFactory(steps.Deps{
		VCS:         s.deps.VCS,
		Cluster:     s.deps.Cluster,
		Infra:       s.deps.Infra,
		Notifier:    s.deps.NewNotifier(profile.WebhookURL),
		ArtifactDir: s.deps.Settings.ArtifactDir,
	})

	p, err := factory.BuildPipeline(req.Pipeline, pipelineDef, profile)
	if err != nil {
		return pipeline.RunReport{}, err
	}

	runID := uuid.New().String()
	ec := pipeline.NewExecutionContext()
	profile.Seed(ec)
	ec.Set(steps.KeyRunID, runID)
	ec.Set(steps.KeyRunEnvironment, profile.Name)

	runner := pipeline.NewRunner().
		WithRetries(s.deps.Settings.Retries).
		WithRetryDelay(s.deps.Settings.RetryDelayOr(2 * time.Second)).
		WithDefaultTimeout(s.deps.Settings.StepTimeoutOr(pipeline.DefaultStepTimeout)).
		WithDryRun(req.DryRun).
		WithForce(req.Force).
		WithObserver(req.Observer)

	s.deps.Logger.Info(ctx, "starting pipeline run",
		ports.F("run_id", runID),
		ports.F("pipeline", req.Pipeline),
		ports.F("environment", profile.Name),
		ports.F("dry_run", req.DryRun))

	report := runner.Run(ctx, p, ec)
	report.RunID = runID
	report.Environment = profile.Name

	if err := s.deps.Store.Save(ctx, report); err != nil {
		// The run already happened; a persistence failure must not mask
		// its outcome.
		s.deps.Logger.Warn(ctx, "could not persist run report",
			ports.F("run_id", runID),
			ports.F("error", err.Error()))
	}

	s.deps.Logger.Info(ctx, "pipeline run finished",
		ports.F("run_id", runID),
		ports.F("status", report.Status.String()))

	return report, nil
}

// Status loads the stored report for a run ID.
func (s *Service) Status(ctx context.Context, runID string) (pipeline.RunReport, error) {
	return s.deps.Store.Get(ctx, runID)
}

// Runs lists all stored reports, most recent first.
func (s *Service) Runs(ctx context.Context) ([]pipeline.RunReport, error) {
	return s.deps.Store.List(ctx)
}

// Prune removes stored reports older than maxAge and returns how many
// were removed.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	removed, err := s.deps.Store.Cleanup(ctx, maxAge)
	if err != nil {
		return 0, err
	}
	s.deps.Logger.Info(ctx, "pruned stored run reports",
		ports.F("removed", removed),
		ports.F("max_age", maxAge.String()))
	return removed, nil
}

// Validate statically checks a definition file without running anything.
func (s *Service) Validate(configPath string) (*definition.Document, error) {
	return definition.NewLoader(version.Version).Load(configPath)
}
