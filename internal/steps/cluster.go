package steps

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/relay/internal/domain/environment"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

// defaultRolloutWait bounds how long a rollout gate waits for convergence
// when the definition does not say.
const defaultRolloutWait = 2 * time.Minute

// clusterApplyStep applies the rendered manifests to the environment's
// cluster.
type clusterApplyStep struct {
	baseStep
	cluster ports.Cluster
	profile environment.Profile
	with    map[string]string
}

func (s *clusterApplyStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	raw := firstOf(s.with["manifests"], ec.Get(KeyManifestPaths))
	if raw == "" {
		return pipeline.NewMissingPreconditionError(s.name, KeyManifestPaths)
	}

	if rc.DryRun() {
		return nil
	}

	manifests := strings.Split(raw, ",")
	if err := s.cluster.Apply(rc.Context(), s.target(), manifests); err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}
	return nil
}

func (s *clusterApplyStep) target() ports.ClusterTarget {
	return clusterTarget(s.profile, s.with)
}

// clusterRolloutStep gates the pipeline on a workload converging. A rollout
// that does not converge is a failed validation of external state, never a
// retry candidate.
type clusterRolloutStep struct {
	baseStep
	cluster ports.Cluster
	profile environment.Profile
	with    map[string]string
}

func (s *clusterRolloutStep) Run(rc pipeline.RunContext, _ *pipeline.ExecutionContext) error {
	workload := s.with["workload"]
	if workload == "" {
		return pipeline.NewValidationError(s.name, "no workload configured for the rollout gate")
	}

	if rc.DryRun() {
		return nil
	}

	wait := defaultRolloutWait
	if raw := s.with["wait"]; raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return pipeline.NewValidationError(s.name, fmt.Sprintf("wait %q is not a duration", raw))
		}
		wait = parsed
	}

	if err := s.cluster.RolloutStatus(rc.Context(), clusterTarget(s.profile, s.with), workload, wait); err != nil {
		return pipeline.NewValidationError(s.name, fmt.Sprintf("workload %s did not converge: %v", workload, err))
	}
	return nil
}

// clusterScaleStep sets the replica count of a workload.
type clusterScaleStep struct {
	baseStep
	cluster ports.Cluster
	profile environment.Profile
	with    map[string]string
}

func (s *clusterScaleStep) Run(rc pipeline.RunContext, _ *pipeline.ExecutionContext) error {
	workload := s.with["workload"]
	if workload == "" {
		return pipeline.NewValidationError(s.name, "no workload configured to scale")
	}

	replicas, err := strconv.Atoi(s.with["replicas"])
	if err != nil || replicas < 0 {
		return pipeline.NewValidationError(s.name, fmt.Sprintf("replicas %q is not a non-negative integer", s.with["replicas"]))
	}

	if rc.DryRun() {
		return nil
	}

	if err := s.cluster.Scale(rc.Context(), clusterTarget(s.profile, s.with), workload, replicas); err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}
	return nil
}

// clusterTarget resolves the target, letting the definition override the
// environment profile.
func clusterTarget(profile environment.Profile, with map[string]string) ports.ClusterTarget {
	return ports.ClusterTarget{
		Context:   firstOf(with["context"], profile.ClusterContext),
		Namespace: firstOf(with["namespace"], profile.Namespace),
	}
}
