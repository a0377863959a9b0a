package pipeline

import (
	"context"
	"errors"
	"time"
)

// Observer receives step-level progress during a run.
// Implementations must be fast; the runner calls them synchronously.
type Observer interface {
	// StepStarted is called before each attempt of a step.
	StepStarted(name StepName, kind StepKind, attempt int)

	// StepFinished is called once per step with its terminal result.
	StepFinished(result StepResult)
}

// NopObserver is an Observer that ignores all events.
type NopObserver struct{}

// StepStarted does nothing.
func (NopObserver) StepStarted(StepName, StepKind, int) {}

// StepFinished does nothing.
func (NopObserver) StepFinished(StepResult) {}

// Runner executes a Pipeline strictly sequentially against one
// ExecutionContext. The runner performs no I/O of its own; all side effects
// are delegated to step actions.
type Runner struct {
	retries        int
	retryDelay     time.Duration
	defaultTimeout time.Duration
	dryRun         bool
	force          bool
	observer       Observer
}

// NewRunner creates a Runner with the default retry bound (1 retry),
// retry delay (2s) and step timeout (300s).
func NewRunner() *Runner {
	return &Runner{
		retries:        1,
		retryDelay:     2 * time.Second,
		defaultTimeout: DefaultStepTimeout,
		observer:       NopObserver{},
	}
}

// WithRetries returns a Runner with the retry bound for retryable steps set.
func (r *Runner) WithRetries(n int) *Runner {
	c := *r
	if n < 0 {
		n = 0
	}
	c.retries = n
	return &c
}

// WithRetryDelay returns a Runner with the fixed delay between attempts set.
func (r *Runner) WithRetryDelay(d time.Duration) *Runner {
	c := *r
	c.retryDelay = d
	return &c
}

// WithDefaultTimeout returns a Runner with the per-attempt timeout used when
// a step declares none.
func (r *Runner) WithDefaultTimeout(d time.Duration) *Runner {
	c := *r
	if d > 0 {
		c.defaultTimeout = d
	}
	return &c
}

// WithDryRun returns a Runner that simulates execution without applying.
func (r *Runner) WithDryRun(dryRun bool) *Runner {
	c := *r
	c.dryRun = dryRun
	return &c
}

// WithForce returns a Runner that records failing analyze steps as skipped
// instead of halting. Validate steps are never forced past.
func (r *Runner) WithForce(force bool) *Runner {
	c := *r
	c.force = force
	return &c
}

// WithObserver returns a Runner that reports step progress to o.
func (r *Runner) WithObserver(o Observer) *Runner {
	c := *r
	if o == nil {
		o = NopObserver{}
	}
	c.observer = o
	return &c
}

// Run executes all steps of p in declared order against ec.
//
// Cancellation is cooperative: ctx is checked before each step, never used
// to abort a mutating step mid-effect (the per-attempt timeout bounds each
// attempt instead). On a fatal failure no further step executes; the report
// records everything that ran.
func (r *Runner) Run(ctx context.Context, p *Pipeline, ec *ExecutionContext) RunReport {
	life := newRunLifecycle()
	defer life.stop()
	life.start()

	report := RunReport{
		Pipeline:  p.Name(),
		DryRun:    r.dryRun,
		StartedAt: time.Now(),
		Steps:     make([]StepRecord, 0, p.Len()),
	}

	for _, step := range p.Steps() {
		if ctx.Err() != nil {
			life.cancel()
			break
		}

		result := r.executeStep(ctx, step, ec)
		r.observer.StepFinished(result)
		report.Steps = append(report.Steps, NewStepRecord(result))

		if result.Status().Halts() {
			report.HaltedAt = result.Name().String()
			life.halt()
			break
		}
	}

	if life.state() == RunStateRunning {
		life.complete()
	}

	report.Status = life.state().Status()
	report.FinishedAt = time.Now()
	report.Context = ec.Snapshot()
	return report
}

// executeStep runs one step to a terminal result, including retries.
func (r *Runner) executeStep(ctx context.Context, step Step, ec *ExecutionContext) StepResult {
	name := step.Name()
	kind := step.Kind()

	// Precondition check: a missing key is a malformed definition, fatal
	// and never retried.
	for _, key := range step.Requires() {
		if !ec.Has(key) {
			return NewStepResult(name, kind, StatusFailedFatal).
				WithErr(NewMissingPreconditionError(name, key))
		}
	}

	timeout := step.Timeout()
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	maxAttempts := 1
	if step.Retryable() {
		maxAttempts = 1 + r.retries
	}

	start := time.Now()
	var lastErr error
	attempt := 0

	for attempt < maxAttempts {
		attempt++
		r.observer.StepStarted(name, kind, attempt)

		err := r.runAttempt(ctx, step, ec, timeout)
		if err == nil {
			if perr := r.verifyProducts(step, ec); perr != nil {
				return NewStepResult(name, kind, StatusFailedFatal).
					WithErr(perr).
					WithAttempts(attempt).
					WithElapsed(time.Since(start))
			}
			return NewStepResult(name, kind, StatusSuccess).
				WithAttempts(attempt).
				WithElapsed(time.Since(start))
		}

		if errors.Is(err, ErrSkip) {
			return NewStepResult(name, kind, StatusSkipped).
				WithMessage(skipReason(err)).
				WithAttempts(attempt).
				WithElapsed(time.Since(start))
		}

		lastErr = err

		// Notify failures are always recoverable and never retried: a
		// notification failure must not abort a pipeline that already
		// made real external changes.
		if kind.FailureIsRecoverable() {
			return NewStepResult(name, kind, StatusFailedRecoverable).
				WithErr(asNotificationError(name, err)).
				WithAttempts(attempt).
				WithElapsed(time.Since(start))
		}

		// Validation failures are never retried: retrying a validation
		// will not change reality.
		if IsValidation(err) || IsMissingPrecondition(err) {
			break
		}

		if attempt < maxAttempts {
			select {
			case <-time.After(r.retryDelay):
			case <-ctx.Done():
				attempt = maxAttempts
			}
		}
	}

	if r.force && kind == KindAnalyze {
		return NewStepResult(name, kind, StatusSkipped).
			WithMessage("forced past failing analyze step: " + lastErr.Error()).
			WithAttempts(attempt).
			WithElapsed(time.Since(start))
	}

	return NewStepResult(name, kind, StatusFailedFatal).
		WithErr(lastErr).
		WithAttempts(attempt).
		WithElapsed(time.Since(start))
}

// runAttempt executes a single attempt under the per-attempt timeout.
func (r *Runner) runAttempt(ctx context.Context, step Step, ec *ExecutionContext, timeout time.Duration) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rc := NewRunContext(attemptCtx).WithDryRun(r.dryRun)
	return step.Run(rc, ec)
}

// verifyProducts checks that a successful step wrote every key it declared.
func (r *Runner) verifyProducts(step Step, ec *ExecutionContext) error {
	if r.dryRun {
		// Dry runs do not write real artifacts.
		return nil
	}
	for _, key := range step.Produces() {
		if !ec.Has(key) {
			return NewMissingProductError(step.Name(), key)
		}
	}
	return nil
}

// asNotificationError wraps err in the notification taxonomy unless it is
// already a classified pipeline error.
func asNotificationError(name StepName, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return NewNotificationError(name, err)
}

// skipReason extracts a human message from an ErrSkip-wrapped error.
func skipReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
