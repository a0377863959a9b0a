package steps

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/relay/internal/domain/definition"
	"github.com/felixgeelhaar/relay/internal/domain/environment"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

// ErrUnknownAction is returned when a definition names a uses: action no
// built-in step implements.
var ErrUnknownAction = errors.New("unknown step action")

// Deps are the external collaborators the built-in steps are bound to.
type Deps struct {
	VCS      ports.VCSHost
	Cluster  ports.Cluster
	Infra    ports.Infra
	Notifier ports.Notifier

	// ArtifactDir is the base directory for per-run rendered artifacts.
	ArtifactDir string
}

// Factory resolves step definitions into executable steps.
type Factory struct {
	deps Deps
}

// NewFactory creates a factory bound to the given collaborators.
func NewFactory(deps Deps) *Factory {
	return &Factory{deps: deps}
}

// Build resolves one step definition into an executable step for the given
// environment.
func (f *Factory) Build(def definition.StepDef, profile environment.Profile) (pipeline.Step, error) {
	base, err := newBaseStep(def)
	if err != nil {
		return nil, err
	}

	switch def.Uses {
	case "vcs:analyze":
		return &vcsAnalyzeStep{baseStep: base, vcs: f.deps.VCS, profile: profile, with: def.With}, nil
	case "vcs:revert-branch":
		return &vcsRevertBranchStep{baseStep: base, vcs: f.deps.VCS, profile: profile, with: def.With}, nil
	case "vcs:open-pr":
		return &vcsOpenPRStep{baseStep: base, vcs: f.deps.VCS, profile: profile, with: def.With}, nil
	case "manifest:render":
		return &manifestRenderStep{baseStep: base, profile: profile, with: def.With, artifactDir: f.deps.ArtifactDir}, nil
	case "cluster:apply":
		return &clusterApplyStep{baseStep: base, cluster: f.deps.Cluster, profile: profile, with: def.With}, nil
	case "cluster:rollout":
		return &clusterRolloutStep{baseStep: base, cluster: f.deps.Cluster, profile: profile, with: def.With}, nil
	case "cluster:scale":
		return &clusterScaleStep{baseStep: base, cluster: f.deps.Cluster, profile: profile, with: def.With}, nil
	case "infra:plan":
		return &infraPlanStep{baseStep: base, infra: f.deps.Infra, with: def.With}, nil
	case "infra:apply":
		return &infraApplyStep{baseStep: base, infra: f.deps.Infra, with: def.With}, nil
	case "notify:webhook":
		return &notifyWebhookStep{baseStep: base, notifier: f.deps.Notifier, with: def.With}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, def.Uses)
	}
}

// BuildPipeline resolves a whole pipeline definition. The environment
// profile's seed keys plus the runner-provided run.* keys count as present
// for the requires check.
func (f *Factory) BuildPipeline(name string, def definition.PipelineDef, profile environment.Profile) (*pipeline.Pipeline, error) {
	built := make([]pipeline.Step, 0, len(def.Steps))
	for _, stepDef := range def.Steps {
		step, err := f.Build(stepDef, profile)
		if err != nil {
			return nil, fmt.Errorf("building step %q: %w", stepDef.Name, err)
		}
		built = append(built, step)
	}

	seed := append(profile.SeedKeys(), KeyRunID, KeyRunEnvironment)
	return pipeline.New(name, seed, built...)
}
