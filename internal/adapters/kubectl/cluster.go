// Package kubectl implements the Cluster port using the kubectl CLI.
package kubectl

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// Cluster implements ports.Cluster.
type Cluster struct {
	runner ports.CommandRunner
}

// NewCluster creates a new kubectl-backed cluster adapter.
func NewCluster(runner ports.CommandRunner) *Cluster {
	return &Cluster{runner: runner}
}

// Apply applies the given manifest files. kubectl apply is idempotent
// server-side, so re-applying unchanged manifests succeeds.
func (c *Cluster) Apply(ctx context.Context, target ports.ClusterTarget, manifests []string) error {
	if len(manifests) == 0 {
		return fmt.Errorf("no manifests to apply")
	}

	args := targetArgs(target)
	args = append(args, "apply")
	for _, m := range manifests {
		args = append(args, "-f", m)
	}

	result, err := c.runner.Run(ctx, "kubectl", args...)
	if err != nil {
		return fmt.Errorf("applying manifests: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("applying manifests: %s", result.Stderr)
	}
	return nil
}

// RolloutStatus waits until the workload converges or the timeout elapses.
func (c *Cluster) RolloutStatus(ctx context.Context, target ports.ClusterTarget, workload string, timeout time.Duration) error {
	args := targetArgs(target)
	args = append(args, "rollout", "status", workload,
		"--timeout", timeout.String())

	result, err := c.runner.Run(ctx, "kubectl", args...)
	if err != nil {
		return fmt.Errorf("rollout status for %s: %w", workload, err)
	}
	if !result.Success() {
		return fmt.Errorf("rollout of %s did not converge: %s", workload, result.Stderr)
	}
	return nil
}

// Scale sets the replica count of the named workload.
func (c *Cluster) Scale(ctx context.Context, target ports.ClusterTarget, workload string, replicas int) error {
	if replicas < 0 {
		return fmt.Errorf("replica count must not be negative, got %d", replicas)
	}

	args := targetArgs(target)
	args = append(args, "scale", workload, "--replicas", strconv.Itoa(replicas))

	result, err := c.runner.Run(ctx, "kubectl", args...)
	if err != nil {
		return fmt.Errorf("scaling %s: %w", workload, err)
	}
	if !result.Success() {
		return fmt.Errorf("scaling %s: %s", workload, result.Stderr)
	}
	return nil
}

// targetArgs translates a ClusterTarget into kubectl flags.
func targetArgs(target ports.ClusterTarget) []string {
	var args []string
	if target.Context != "" {
		args = append(args, "--context", target.Context)
	}
	if target.Namespace != "" {
		args = append(args, "--namespace", target.Namespace)
	}
	return args
}

// Ensure Cluster implements ports.Cluster.
var _ ports.Cluster = (*Cluster)(nil)
