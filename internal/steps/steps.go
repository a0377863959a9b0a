// Package steps provides the built-in step implementations and the factory
// that binds a pipeline definition's uses: actions to the external ports.
//
// Steps communicate through well-known execution-context keys. In a dry run
// no external system is touched: mutating steps write their produced keys
// with computed or placeholder values so later steps still see a coherent
// context, and analyze/validate steps report success without calling out.
package steps

import (
	"time"

	"github.com/felixgeelhaar/relay/internal/domain/definition"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// Well-known execution-context keys written and read by the built-in steps.
const (
	KeyRunID          = pipeline.ContextKey("run.id")
	KeyRunEnvironment = pipeline.ContextKey("run.environment")

	KeyCommit   = pipeline.ContextKey("vcs.commit")
	KeyBranch   = pipeline.ContextKey("vcs.branch")
	KeyPRNumber = pipeline.ContextKey("vcs.pr_number")
	KeyPRState  = pipeline.ContextKey("vcs.pr_state")
	KeyPRReview = pipeline.ContextKey("vcs.pr_review")
	KeyPRURL    = pipeline.ContextKey("vcs.pr_url")

	KeyManifestDir   = pipeline.ContextKey("manifest.dir")
	KeyManifestPaths = pipeline.ContextKey("manifest.paths")

	KeyInfraChanges = pipeline.ContextKey("infra.changes")
)

// baseStep carries the declarative attributes shared by every built-in step.
type baseStep struct {
	name      pipeline.StepName
	kind      pipeline.StepKind
	requires  []pipeline.ContextKey
	produces  []pipeline.ContextKey
	retryable bool
	timeout   time.Duration
}

// newBaseStep builds the shared attributes from a step definition.
func newBaseStep(def definition.StepDef) (baseStep, error) {
	name, err := pipeline.NewStepName(def.Name)
	if err != nil {
		return baseStep{}, err
	}

	return baseStep{
		name:      name,
		kind:      pipeline.StepKind(def.Kind),
		requires:  toContextKeys(def.Requires),
		produces:  toContextKeys(def.Produces),
		retryable: def.Retryable,
		timeout:   def.Timeout.Duration(),
	}, nil
}

func (s baseStep) Name() pipeline.StepName { return s.name }
func (s baseStep) Kind() pipeline.StepKind { return s.kind }
func (s baseStep) Requires() []pipeline.ContextKey { return s.requires }
func (s baseStep) Produces() []pipeline.ContextKey { return s.produces }
func (s baseStep) Retryable() bool { return s.retryable }
func (s baseStep) Timeout() time.Duration { return s.timeout }

func toContextKeys(keys []string) []pipeline.ContextKey {
	if len(keys) == 0 {
		return nil
	}
	out := make([]pipeline.ContextKey, len(keys))
	for i, k := range keys {
		out[i] = pipeline.ContextKey(k)
	}
	return out
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
