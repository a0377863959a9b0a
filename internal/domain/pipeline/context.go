package pipeline

import (
	"context"
	"sort"
)

// ExecutionContext is the mutable key-value state shared by the steps of a
// single run. It is owned by one Runner for the duration of one run and is
// not safe for concurrent use. Keys are never deleted mid-run; a later Set
// overwrites an earlier one.
type ExecutionContext struct {
	values map[ContextKey]string
}

// NewExecutionContext creates an empty ExecutionContext.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		values: make(map[ContextKey]string),
	}
}

// Get returns the value for key, or the empty string when absent.
func (c *ExecutionContext) Get(key ContextKey) string {
	return c.values[key]
}

// Lookup returns the value for key and whether it is present.
func (c *ExecutionContext) Lookup(key ContextKey) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *ExecutionContext) Has(key ContextKey) bool {
	_, ok := c.values[key]
	return ok
}

// Set stores value under key, overwriting any earlier value.
func (c *ExecutionContext) Set(key ContextKey, value string) {
	c.values[key] = value
}

// Keys returns all present keys in sorted order.
func (c *ExecutionContext) Keys() []ContextKey {
	keys := make([]ContextKey, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Len returns the number of stored keys.
func (c *ExecutionContext) Len() int {
	return len(c.values)
}

// Snapshot returns an immutable copy of the current state for reporting.
func (c *ExecutionContext) Snapshot() map[string]string {
	snap := make(map[string]string, len(c.values))
	for k, v := range c.values {
		snap[k.String()] = v
	}
	return snap
}

// RunContext carries per-attempt execution context into a step.
type RunContext struct {
	ctx    context.Context
	dryRun bool
}

// NewRunContext creates a RunContext wrapping the given context.Context.
func NewRunContext(ctx context.Context) RunContext {
	return RunContext{ctx: ctx}
}

// Context returns the underlying context.Context. It carries the per-step
// timeout and the run's cancellation signal.
func (r RunContext) Context() context.Context {
	return r.ctx
}

// DryRun reports whether this is a dry-run execution. Mutating steps must
// not touch external systems when true.
func (r RunContext) DryRun() bool {
	return r.dryRun
}

// WithDryRun returns a copy with the dry-run flag set.
func (r RunContext) WithDryRun(dryRun bool) RunContext {
	r.dryRun = dryRun
	return r
}
