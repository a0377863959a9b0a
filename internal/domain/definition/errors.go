package definition

import (
	"fmt"
	"strings"
)

// Error codes for definition loading.
const (
	ErrCodeNotFound        = "DEFINITION_NOT_FOUND"
	ErrCodeParse           = "DEFINITION_PARSE"
	ErrCodeSchema          = "DEFINITION_SCHEMA"
	ErrCodeInvalid         = "DEFINITION_INVALID"
	ErrCodeVersion         = "DEFINITION_VERSION"
	ErrCodeUnknownPipeline = "PIPELINE_UNKNOWN"
)

// UserError is a user-facing definition error with an actionable suggestion.
type UserError struct {
	Code       string // error code for categorization
	Message    string // user-friendly error message
	Context    string // file path or document location
	Suggestion string // actionable suggestion to fix the error
	Underlying error  // wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() comparison by error code.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewDefinitionNotFoundError creates an error for a missing relay.yaml.
func NewDefinitionNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeNotFound,
		Message:    "pipeline definition file not found",
		Context:    path,
		Suggestion: "Create a relay.yaml or pass --config with the definition path.",
	}
}

// NewYAMLParseError creates an error for malformed YAML.
func NewYAMLParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeParse,
		Message:    "definition file is not valid YAML",
		Context:    path,
		Suggestion: "Check indentation and quoting near the location in the parser message.",
		Underlying: err,
	}
}

// NewSchemaError creates an error for a document that fails schema validation.
func NewSchemaError(path string, violations []string) *UserError {
	return &UserError{
		Code:       ErrCodeSchema,
		Message:    "definition does not match the expected structure: " + strings.Join(violations, "; "),
		Context:    path,
		Suggestion: "Compare the document against the documented relay.yaml structure.",
	}
}

// NewInvalidDefinitionError creates an error for a structurally valid but
// semantically broken definition.
func NewInvalidDefinitionError(message, suggestion string) *UserError {
	return &UserError{
		Code:       ErrCodeInvalid,
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewVersionError creates an error for a document requiring a newer relay.
func NewVersionError(path, required, current string) *UserError {
	return &UserError{
		Code:       ErrCodeVersion,
		Message:    fmt.Sprintf("definition requires relay %s or newer, this is %s", required, current),
		Context:    path,
		Suggestion: "Upgrade relay, or lower the version field in the definition.",
	}
}

// NewUnknownPipelineError creates an error for a pipeline name not in the
// document.
func NewUnknownPipelineError(name string, known []string) *UserError {
	return &UserError{
		Code:       ErrCodeUnknownPipeline,
		Message:    fmt.Sprintf("pipeline %q is not defined", name),
		Suggestion: "Defined pipelines: " + strings.Join(known, ", "),
	}
}
