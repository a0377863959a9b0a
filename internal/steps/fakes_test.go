package steps

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// fakeVCS is an in-memory VCSHost.
type fakeVCS struct {
	branches map[string]bool
	reverted map[string]bool
	openPRs  map[string]ports.PullRequest
	status   ports.PullRequest

	ensureBranchCalls int
	ensurePRCalls     int
	failWith          error
}

func newFakeVCS() *fakeVCS {
	return &fakeVCS{
		branches: make(map[string]bool),
		reverted: make(map[string]bool),
		openPRs:  make(map[string]ports.PullRequest),
	}
}

func (f *fakeVCS) BranchExists(_ context.Context, _, branch string) (bool, error) {
	if f.failWith != nil {
		return false, f.failWith
	}
	return f.branches[branch], nil
}

func (f *fakeVCS) EnsureBranch(_ context.Context, _, branch, _ string) (bool, error) {
	f.ensureBranchCalls++
	if f.failWith != nil {
		return false, f.failWith
	}
	if f.branches[branch] {
		return false, nil
	}
	f.branches[branch] = true
	return true, nil
}

func (f *fakeVCS) RevertCommit(_ context.Context, _, _, commit string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.reverted[commit] = true
	return nil
}

func (f *fakeVCS) EnsurePullRequest(_ context.Context, opts ports.PullRequestOptions) (ports.PullRequest, error) {
	f.ensurePRCalls++
	if f.failWith != nil {
		return ports.PullRequest{}, f.failWith
	}
	if pr, ok := f.openPRs[opts.Head]; ok {
		return pr, nil
	}
	pr := ports.PullRequest{Number: 100 + len(f.openPRs), URL: "https://example.test/pr", State: "open"}
	f.openPRs[opts.Head] = pr
	return pr, nil
}

func (f *fakeVCS) PullRequestStatus(_ context.Context, _ string, _ int) (ports.PullRequest, error) {
	if f.failWith != nil {
		return ports.PullRequest{}, f.failWith
	}
	return f.status, nil
}

// fakeCluster is an in-memory Cluster.
type fakeCluster struct {
	applied     [][]string
	rolloutErr  error
	scaled      map[string]int
	lastTarget  ports.ClusterTarget
	lastTimeout time.Duration
}

func newFakeCluster() *fakeCluster {
	return &fakeCluster{scaled: make(map[string]int)}
}

func (f *fakeCluster) Apply(_ context.Context, target ports.ClusterTarget, manifests []string) error {
	f.lastTarget = target
	f.applied = append(f.applied, manifests)
	return nil
}

func (f *fakeCluster) RolloutStatus(_ context.Context, target ports.ClusterTarget, _ string, timeout time.Duration) error {
	f.lastTarget = target
	f.lastTimeout = timeout
	return f.rolloutErr
}

func (f *fakeCluster) Scale(_ context.Context, target ports.ClusterTarget, workload string, replicas int) error {
	f.lastTarget = target
	f.scaled[workload] = replicas
	return nil
}

// fakeInfra is an in-memory Infra.
type fakeInfra struct {
	validateErr error
	pending     bool
	planErr     error
	applyErr    error
	applied     []string
}

func (f *fakeInfra) Validate(_ context.Context, _ string) error {
	return f.validateErr
}

func (f *fakeInfra) Plan(_ context.Context, _ string) (bool, error) {
	return f.pending, f.planErr
}

func (f *fakeInfra) Apply(_ context.Context, dir string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, dir)
	return nil
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	sent    []ports.Notification
	failing bool
}

func (f *fakeNotifier) Notify(_ context.Context, n ports.Notification) error {
	if f.failing {
		return errors.New("sink unreachable")
	}
	f.sent = append(f.sent, n)
	return nil
}
