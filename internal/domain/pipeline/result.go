package pipeline

import "time"

// StepResult captures the outcome of executing a single step.
// It is immutable once created; the With* methods return copies.
type StepResult struct {
	name     StepName
	kind     StepKind
	status   StepStatus
	message  string
	err      error
	attempts int
	elapsed  time.Duration
}

// NewStepResult creates a StepResult for the given step and status.
func NewStepResult(name StepName, kind StepKind, status StepStatus) StepResult {
	return StepResult{
		name:     name,
		kind:     kind,
		status:   status,
		attempts: 1,
	}
}

// Name returns the executed step's name.
func (r StepResult) Name() StepName {
	return r.name
}

// Kind returns the executed step's kind.
func (r StepResult) Kind() StepKind {
	return r.kind
}

// Status returns the terminal status.
func (r StepResult) Status() StepStatus {
	return r.status
}

// Message returns the human-readable outcome message.
func (r StepResult) Message() string {
	if r.message != "" {
		return r.message
	}
	if r.err != nil {
		return r.err.Error()
	}
	return ""
}

// Err returns the failure, or nil.
func (r StepResult) Err() error {
	return r.err
}

// Attempts returns how many times the step was attempted.
func (r StepResult) Attempts() int {
	return r.attempts
}

// Elapsed returns the total time spent across attempts.
func (r StepResult) Elapsed() time.Duration {
	return r.elapsed
}

// WithMessage returns a copy with the message set.
func (r StepResult) WithMessage(msg string) StepResult {
	r.message = msg
	return r
}

// WithErr returns a copy with the failure set.
func (r StepResult) WithErr(err error) StepResult {
	r.err = err
	return r
}

// WithAttempts returns a copy with the attempt count set.
func (r StepResult) WithAttempts(n int) StepResult {
	r.attempts = n
	return r
}

// WithElapsed returns a copy with the elapsed duration set.
func (r StepResult) WithElapsed(d time.Duration) StepResult {
	r.elapsed = d
	return r
}
