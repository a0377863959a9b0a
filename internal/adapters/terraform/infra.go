// Package terraform implements the Infra port using the terraform CLI.
package terraform

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// planExitChanges is terraform's -detailed-exitcode signal for a non-empty
// plan.
const planExitChanges = 2

// Infra implements ports.Infra.
type Infra struct {
	runner ports.CommandRunner
}

// NewInfra creates a new terraform-backed infra adapter.
func NewInfra(runner ports.CommandRunner) *Infra {
	return &Infra{runner: runner}
}

// Validate checks the configuration in dir.
func (i *Infra) Validate(ctx context.Context, dir string) error {
	result, err := i.runner.Run(ctx, "terraform", "-chdir="+dir, "validate", "-no-color")
	if err != nil {
		return fmt.Errorf("validating %s: %w", dir, err)
	}
	if !result.Success() {
		return fmt.Errorf("configuration in %s is invalid: %s", dir, result.Stderr)
	}
	return nil
}

// Plan computes pending changes in dir. Exit code 0 means no changes,
// 2 means changes are pending, anything else is a failure.
func (i *Infra) Plan(ctx context.Context, dir string) (bool, error) {
	result, err := i.runner.Run(ctx, "terraform", "-chdir="+dir, "plan",
		"-no-color", "-input=false", "-detailed-exitcode")
	if err != nil {
		return false, fmt.Errorf("planning %s: %w", dir, err)
	}
	switch result.ExitCode {
	case 0:
		return false, nil
	case planExitChanges:
		return true, nil
	default:
		return false, fmt.Errorf("planning %s: %s", dir, result.Stderr)
	}
}

// Apply applies the configuration in dir. Terraform converges state, so
// applying an already-applied configuration changes nothing.
func (i *Infra) Apply(ctx context.Context, dir string) error {
	result, err := i.runner.Run(ctx, "terraform", "-chdir="+dir, "apply",
		"-no-color", "-input=false", "-auto-approve")
	if err != nil {
		return fmt.Errorf("applying %s: %w", dir, err)
	}
	if !result.Success() {
		return fmt.Errorf("applying %s: %s", dir, result.Stderr)
	}
	return nil
}

// Ensure Infra implements ports.Infra.
var _ ports.Infra = (*Infra)(nil)
