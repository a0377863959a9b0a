package pipeline

import (
	"errors"
	"fmt"
)

// Errors returned by pipeline construction.
var (
	ErrDuplicateStep       = errors.New("duplicate step name")
	ErrUnsatisfiedRequires = errors.New("step requires a key no earlier step produces")
	ErrInvalidKind         = errors.New("unknown step kind")
	ErrEmptyPipeline       = errors.New("pipeline has no steps")
)

// Pipeline is a validated, ordered sequence of steps. It is immutable after
// construction and may be reused across runs; all per-run state lives in the
// ExecutionContext.
type Pipeline struct {
	name  string
	steps []Step
	seed  []ContextKey
}

// New validates the given steps and constructs a Pipeline.
//
// seed lists the context keys present before the first step runs (environment
// profile keys and runner-provided keys). Validation rejects duplicate step
// names, unknown kinds, and any step whose Requires set is not covered by
// seed plus the Produces sets of strictly earlier steps. The check happens
// here, once, never at run time.
func New(name string, seed []ContextKey, steps ...Step) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyPipeline
	}

	available := make(map[ContextKey]bool, len(seed))
	for _, k := range seed {
		available[k] = true
	}

	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		sn := step.Name().String()
		if sn == "" {
			return nil, fmt.Errorf("%w: step has empty name", ErrInvalidStepName)
		}
		if seen[sn] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStep, sn)
		}
		seen[sn] = true

		if !step.Kind().IsValid() {
			return nil, fmt.Errorf("%w: step %q has kind %q", ErrInvalidKind, sn, step.Kind())
		}

		for _, req := range step.Requires() {
			if !available[req] {
				return nil, fmt.Errorf("%w: step %q requires %q", ErrUnsatisfiedRequires, sn, req)
			}
		}
		for _, out := range step.Produces() {
			available[out] = true
		}
	}

	copied := make([]Step, len(steps))
	copy(copied, steps)
	seedCopy := make([]ContextKey, len(seed))
	copy(seedCopy, seed)

	return &Pipeline{name: name, steps: copied, seed: seedCopy}, nil
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string {
	return p.name
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Steps returns the ordered steps.
func (p *Pipeline) Steps() []Step {
	return p.steps
}

// SeedKeys returns the context keys the pipeline expects before the first
// step runs.
func (p *Pipeline) SeedKeys() []ContextKey {
	return p.seed
}
