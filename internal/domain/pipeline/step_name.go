package pipeline

import (
	"errors"
	"fmt"
)

// ErrInvalidStepName is returned when a step name fails validation.
var ErrInvalidStepName = errors.New("invalid step name")

// StepName is the validated identifier of a step within a pipeline.
type StepName struct {
	value string
}

// NewStepName validates and creates a StepName.
// Names are non-empty and limited to lowercase letters, digits, '-' and ':'.
func NewStepName(value string) (StepName, error) {
	if value == "" {
		return StepName{}, fmt.Errorf("%w: empty", ErrInvalidStepName)
	}
	for _, r := range value {
		if !isStepNameRune(r) {
			return StepName{}, fmt.Errorf("%w: %q contains %q", ErrInvalidStepName, value, r)
		}
	}
	return StepName{value: value}, nil
}

// MustStepName creates a StepName and panics on invalid input.
// Intended for static step definitions and tests.
func MustStepName(value string) StepName {
	name, err := NewStepName(value)
	if err != nil {
		panic(err)
	}
	return name
}

// String returns the name's string form.
func (n StepName) String() string {
	return n.value
}

// IsZero reports whether the name is the zero value.
func (n StepName) IsZero() bool {
	return n.value == ""
}

func isStepNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '-' || r == ':':
		return true
	}
	return false
}
