// Package pipeline contains the core execution model: steps, the shared
// execution context, validated pipelines, and the sequential runner.
package pipeline

import "time"

// DefaultStepTimeout bounds a single step attempt when the step declares none.
const DefaultStepTimeout = 300 * time.Second

// ContextKey identifies a value in the ExecutionContext.
type ContextKey string

// String returns the key as a plain string.
func (k ContextKey) String() string {
	return string(k)
}

// Step is an idempotent unit of pipeline work. A step declares the context
// keys it reads and the keys it writes; the runner enforces both.
type Step interface {
	// Name returns the unique name of this step within its pipeline.
	Name() StepName

	// Kind classifies the step's failure semantics.
	Kind() StepKind

	// Requires returns the context keys that must be present before Run.
	Requires() []ContextKey

	// Produces returns the context keys this step writes on success.
	Produces() []ContextKey

	// Retryable reports whether a failed attempt may be retried.
	Retryable() bool

	// Timeout returns the per-attempt timeout, or zero for the default.
	Timeout() time.Duration

	// Run executes the step against the shared context.
	// Run must be idempotent for mutating steps: re-running with the same
	// context must not double-apply the external effect.
	Run(rc RunContext, ec *ExecutionContext) error
}
