// Package definition loads and validates declarative pipeline definitions
// from relay.yaml documents.
package definition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// Seed key prefixes available before the first step runs. Environment
// profile keys and runner-provided keys are not produced by steps, so the
// static requires check treats them as always present.
const (
	EnvKeyPrefix = "env."
	RunKeyPrefix = "run."
)

// Document is a parsed relay.yaml file.
type Document struct {
	// Version is the minimum relay version this document requires,
	// e.g. "v0.2.0". Empty means any version.
	Version   string                 `yaml:"version,omitempty"`
	Pipelines map[string]PipelineDef `yaml:"pipelines"`
}

// PipelineDef is one named pipeline definition.
type PipelineDef struct {
	Description string    `yaml:"description,omitempty"`
	Steps       []StepDef `yaml:"steps"`
}

// StepDef is one step of a pipeline definition.
type StepDef struct {
	Name      string            `yaml:"name"`
	Kind      string            `yaml:"kind"`
	Uses      string            `yaml:"uses"`
	Requires  []string          `yaml:"requires,omitempty"`
	Produces  []string          `yaml:"produces,omitempty"`
	Retryable bool              `yaml:"retryable,omitempty"`
	Timeout   Duration          `yaml:"timeout,omitempty"`
	With      map[string]string `yaml:"with,omitempty"`
}

// Names returns the defined pipeline names in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Pipelines))
	for name := range d.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pipeline returns the named pipeline definition.
func (d *Document) Pipeline(name string) (PipelineDef, error) {
	def, ok := d.Pipelines[name]
	if !ok {
		return PipelineDef{}, NewUnknownPipelineError(name, d.Names())
	}
	return def, nil
}

// Validate performs the static checks that do not need an environment:
// step names are unique and well-formed, kinds and uses actions are known,
// and every required key is either a seed key or produced by a strictly
// earlier step.
func (d *Document) Validate() error {
	if len(d.Pipelines) == 0 {
		return NewInvalidDefinitionError("document defines no pipelines",
			"Add at least one entry under the top-level pipelines map.")
	}

	for _, name := range d.Names() {
		if err := d.Pipelines[name].validate(name); err != nil {
			return err
		}
	}
	return nil
}

func (p PipelineDef) validate(pipelineName string) error {
	if len(p.Steps) == 0 {
		return NewInvalidDefinitionError(
			fmt.Sprintf("pipeline %q has no steps", pipelineName),
			"A pipeline needs an ordered steps list.")
	}

	seen := make(map[string]bool, len(p.Steps))
	available := make(map[string]bool)

	for _, step := range p.Steps {
		if _, err := pipeline.NewStepName(step.Name); err != nil {
			return NewInvalidDefinitionError(
				fmt.Sprintf("pipeline %q: %v", pipelineName, err),
				"Step names use lowercase letters, digits, '-' and ':'.")
		}
		if seen[step.Name] {
			return NewInvalidDefinitionError(
				fmt.Sprintf("pipeline %q: duplicate step %q", pipelineName, step.Name),
				"Each step name must be unique within its pipeline.")
		}
		seen[step.Name] = true

		if !pipeline.StepKind(step.Kind).IsValid() {
			return NewInvalidDefinitionError(
				fmt.Sprintf("pipeline %q: step %q has unknown kind %q", pipelineName, step.Name, step.Kind),
				"Valid kinds are analyze, mutate, validate and notify.")
		}

		if step.Uses == "" {
			return NewInvalidDefinitionError(
				fmt.Sprintf("pipeline %q: step %q has no uses action", pipelineName, step.Name),
				"Set uses to one of the built-in actions, e.g. vcs:analyze or cluster:apply.")
		}
		if !IsKnownAction(step.Uses) {
			return NewInvalidDefinitionError(
				fmt.Sprintf("pipeline %q: step %q uses unknown action %q", pipelineName, step.Name, step.Uses),
				"Built-in actions: "+strings.Join(ActionNames(), ", ")+".")
		}

		for _, req := range step.Requires {
			if isSeedKey(req) || available[req] {
				continue
			}
			return NewInvalidDefinitionError(
				fmt.Sprintf("pipeline %q: step %q requires %q, which no earlier step produces", pipelineName, step.Name, req),
				"Declare the key in an earlier step's produces list, or use an env./run. seed key.")
		}
		for _, out := range step.Produces {
			available[out] = true
		}
	}
	return nil
}

// isSeedKey reports whether key is present before the first step runs.
func isSeedKey(key string) bool {
	return strings.HasPrefix(key, EnvKeyPrefix) || strings.HasPrefix(key, RunKeyPrefix)
}
