// Package ports defines the interfaces relay uses to reach external
// collaborators: the shell, the version-control host, the cluster control
// plane, the infrastructure tool, the notification sink and the report store.
package ports

import "context"

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner executes shell commands. The external CLIs (git, gh,
// kubectl, terraform) are reached exclusively through this port.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}
