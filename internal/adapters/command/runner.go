// Package command provides the exec-based CommandRunner adapter.
package command

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// ExecRunner executes commands with os/exec.
type ExecRunner struct {
	extraEnv []string
}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// WithEnv returns an ExecRunner that appends the given KEY=VALUE pairs to
// the inherited environment of every command.
func (r *ExecRunner) WithEnv(env ...string) *ExecRunner {
	c := *r
	c.extraEnv = append(append([]string{}, r.extraEnv...), env...)
	return &c
}

// Run executes a command and captures its output. A non-zero exit is not an
// error; callers inspect CommandResult.ExitCode. An error means the command
// could not be started at all.
func (r *ExecRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(r.extraEnv) > 0 {
		cmd.Env = append(os.Environ(), r.extraEnv...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// Ensure ExecRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*ExecRunner)(nil)
