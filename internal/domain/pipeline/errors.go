package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for the pipeline error taxonomy.
const (
	ErrCodeMissingPrecondition = "MISSING_PRECONDITION"
	ErrCodeMissingProduct      = "MISSING_PRODUCT"
	ErrCodeExternalCall        = "EXTERNAL_CALL_FAILED"
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeNotification        = "NOTIFICATION_FAILED"
)

// ErrSkip may be returned by a step's Run to record the step as skipped
// rather than succeeded. The runner does not verify produced keys for a
// skipped step.
var ErrSkip = errors.New("step skipped")

// Error is a classified pipeline error with an actionable suggestion.
type Error struct {
	Code       string // taxonomy code
	Message    string // user-facing message
	Step       string // step name, when attributable
	Suggestion string // actionable remediation hint
	Underlying error  // wrapped cause
}

// Error returns the formatted message.
func (e *Error) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("step %q: %s", e.Step, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches errors by taxonomy code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns the full multi-line rendering used on halt.
func (e *Error) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Step != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.Step)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Next step: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}
	return b.String()
}

// NewMissingPreconditionError reports a required context key that no earlier
// step produced. Always fatal, never retried.
func NewMissingPreconditionError(step StepName, key ContextKey) *Error {
	return &Error{
		Code:       ErrCodeMissingPrecondition,
		Message:    fmt.Sprintf("required context key %q is absent", key),
		Step:       step.String(),
		Suggestion: "The pipeline definition is malformed: declare the key in an earlier step's produces list or in the environment profile.",
	}
}

// NewMissingProductError reports a step that succeeded without writing a key
// it declared in its produces list.
func NewMissingProductError(step StepName, key ContextKey) *Error {
	return &Error{
		Code:       ErrCodeMissingProduct,
		Message:    fmt.Sprintf("step succeeded but did not write declared key %q", key),
		Step:       step.String(),
		Suggestion: "Fix the step implementation or remove the key from its produces list.",
	}
}

// NewExternalCallError wraps a transient failure talking to an external
// collaborator. Retryable up to the runner's bound.
func NewExternalCallError(step StepName, err error) *Error {
	return &Error{
		Code:       ErrCodeExternalCall,
		Message:    "external call failed",
		Step:       step.String(),
		Suggestion: "Check connectivity and credentials for the external system, then re-run.",
		Underlying: err,
	}
}

// NewValidationError reports an external-state invariant that did not hold.
// Fatal and never retried: retrying a validation does not change reality.
func NewValidationError(step StepName, message string) *Error {
	return &Error{
		Code:       ErrCodeValidation,
		Message:    message,
		Step:       step.String(),
		Suggestion: "Inspect the external system, resolve the reported condition, then re-run the pipeline.",
	}
}

// NewNotificationError wraps a notify-step failure. Always recoverable.
func NewNotificationError(step StepName, err error) *Error {
	return &Error{
		Code:       ErrCodeNotification,
		Message:    "notification failed",
		Step:       step.String(),
		Suggestion: "Verify the notification sink URL; the run itself was not affected.",
		Underlying: err,
	}
}

// IsValidation reports whether err carries the validation code.
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeValidation
}

// IsMissingPrecondition reports whether err carries the precondition code.
func IsMissingPrecondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeMissingPrecondition
}

// IsExternalCall reports whether err carries the external-call code.
func IsExternalCall(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeExternalCall
}
