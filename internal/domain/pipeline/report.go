package pipeline

import "time"

// RunStatus is the overall outcome of a pipeline run.
type RunStatus string

const (
	// RunCompleted indicates every step ran to a non-fatal outcome.
	RunCompleted RunStatus = "completed"
	// RunHaltedFatal indicates a fatal step failure stopped the run.
	RunHaltedFatal RunStatus = "halted-fatal"
	// RunCancelled indicates cooperative cancellation stopped the run
	// between steps.
	RunCancelled RunStatus = "cancelled"
)

// String returns the string representation of the status.
func (s RunStatus) String() string {
	return string(s)
}

// StepRecord is the serializable record of one StepResult.
type StepRecord struct {
	Name     string        `yaml:"name" json:"name"`
	Kind     string        `yaml:"kind" json:"kind"`
	Status   string        `yaml:"status" json:"status"`
	Message  string        `yaml:"message,omitempty" json:"message,omitempty"`
	Attempts int           `yaml:"attempts" json:"attempts"`
	Elapsed  time.Duration `yaml:"elapsed" json:"elapsed"`
}

// NewStepRecord converts a StepResult into its serializable form.
func NewStepRecord(r StepResult) StepRecord {
	return StepRecord{
		Name:     r.Name().String(),
		Kind:     r.Kind().String(),
		Status:   r.Status().String(),
		Message:  r.Message(),
		Attempts: r.Attempts(),
		Elapsed:  r.Elapsed(),
	}
}

// RunReport is the durable record of one pipeline run. It is the single
// source of truth for what happened: every executed step appears exactly
// once, in execution order.
type RunReport struct {
	RunID       string            `yaml:"run_id" json:"run_id"`
	Pipeline    string            `yaml:"pipeline" json:"pipeline"`
	Environment string            `yaml:"environment" json:"environment"`
	Status      RunStatus         `yaml:"status" json:"status"`
	DryRun      bool              `yaml:"dry_run,omitempty" json:"dry_run,omitempty"`
	StartedAt   time.Time         `yaml:"started_at" json:"started_at"`
	FinishedAt  time.Time         `yaml:"finished_at" json:"finished_at"`
	Steps       []StepRecord      `yaml:"steps" json:"steps"`
	HaltedAt    string            `yaml:"halted_at,omitempty" json:"halted_at,omitempty"`
	Context     map[string]string `yaml:"context,omitempty" json:"context,omitempty"`
}

// Halted reports whether the run stopped before executing all steps.
func (r RunReport) Halted() bool {
	return r.Status == RunHaltedFatal || r.Status == RunCancelled
}

// Elapsed returns the wall-clock duration of the run.
func (r RunReport) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary aggregates step outcomes by status.
type Summary struct {
	Total       int
	Succeeded   int
	Skipped     int
	Recoverable int
	Fatal       int
}

// Summarize counts step outcomes.
func (r RunReport) Summarize() Summary {
	s := Summary{Total: len(r.Steps)}
	for _, rec := range r.Steps {
		switch StepStatus(rec.Status) {
		case StatusSuccess:
			s.Succeeded++
		case StatusSkipped:
			s.Skipped++
		case StatusFailedRecoverable:
			s.Recoverable++
		case StatusFailedFatal:
			s.Fatal++
		}
	}
	return s
}
