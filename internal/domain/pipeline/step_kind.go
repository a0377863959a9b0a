package pipeline

// StepKind classifies a step's failure semantics.
type StepKind string

const (
	// KindAnalyze reads external state and writes derived facts into the
	// context. Analyze steps never mutate external systems.
	KindAnalyze StepKind = "analyze"
	// KindMutate performs an idempotent external side effect.
	KindMutate StepKind = "mutate"
	// KindValidate checks invariants about external state and fails
	// fatally when they do not hold. Validate steps never mutate.
	KindValidate StepKind = "validate"
	// KindNotify reports status best-effort. Notify failures are always
	// recoverable and never halt the pipeline.
	KindNotify StepKind = "notify"
)

// String returns the string representation of the kind.
func (k StepKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is one of the known values.
func (k StepKind) IsValid() bool {
	switch k {
	case KindAnalyze, KindMutate, KindValidate, KindNotify:
		return true
	}
	return false
}

// FailureIsRecoverable reports whether a failure of this kind is recorded
// without halting the run.
func (k StepKind) FailureIsRecoverable() bool {
	return k == KindNotify
}
