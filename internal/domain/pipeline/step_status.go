package pipeline

// StepStatus is the terminal outcome of one step execution.
type StepStatus string

const (
	// StatusSuccess indicates the step completed.
	StatusSuccess StepStatus = "success"
	// StatusSkipped indicates the step did not run (forced skip, or
	// nothing to do).
	StatusSkipped StepStatus = "skipped"
	// StatusFailedRecoverable indicates the step failed but the run
	// continues (notify steps only).
	StatusFailedRecoverable StepStatus = "failed-recoverable"
	// StatusFailedFatal indicates the step failed and the run halts.
	StatusFailedFatal StepStatus = "failed-fatal"
)

// String returns the string representation of the status.
func (s StepStatus) String() string {
	return string(s)
}

// Failed reports whether the status is either failure class.
func (s StepStatus) Failed() bool {
	return s == StatusFailedRecoverable || s == StatusFailedFatal
}

// Halts reports whether this status stops the remaining steps.
func (s StepStatus) Halts() bool {
	return s == StatusFailedFatal
}
