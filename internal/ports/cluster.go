package ports

import (
	"context"
	"time"
)

// ClusterTarget selects the cluster context and namespace operations run in.
type ClusterTarget struct {
	Context   string
	Namespace string
}

// Cluster is the container-orchestration control-plane port.
type Cluster interface {
	// Apply applies the given manifest files. Apply is idempotent:
	// re-applying an unchanged manifest is a no-op server-side.
	Apply(ctx context.Context, target ClusterTarget, manifests []string) error

	// RolloutStatus waits until the named workload converges, or fails
	// when it does not within the timeout.
	RolloutStatus(ctx context.Context, target ClusterTarget, workload string, timeout time.Duration) error

	// Scale sets the replica count of the named workload.
	Scale(ctx context.Context, target ClusterTarget, workload string, replicas int) error
}
