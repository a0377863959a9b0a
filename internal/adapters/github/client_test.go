package github

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// fakeRunner matches commands by prefix and replays canned results.
type fakeRunner struct {
	responses []fakeResponse
	calls     []string
}

type fakeResponse struct {
	prefix string
	result ports.CommandResult
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (ports.CommandResult, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	for _, r := range f.responses {
		if strings.HasPrefix(call, r.prefix) {
			return r.result, nil
		}
	}
	return ports.CommandResult{ExitCode: 1, Stderr: "unexpected command: " + call}, nil
}

func (f *fakeRunner) on(prefix string, result ports.CommandResult) *fakeRunner {
	f.responses = append(f.responses, fakeResponse{prefix: prefix, result: result})
	return f
}

func (f *fakeRunner) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func TestBranchExists(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh api repos/acme/web/branches/release", ports.CommandResult{ExitCode: 0})
	client := NewClient(runner)

	exists, err := client.BranchExists(context.Background(), "acme/web", "release")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestBranchExists_NotFound(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh api repos/acme/web/branches/release", ports.CommandResult{
			ExitCode: 1,
			Stderr:   "gh: Not Found (HTTP 404)",
		})
	client := NewClient(runner)

	exists, err := client.BranchExists(context.Background(), "acme/web", "release")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnsureBranch_CreatesWhenAbsent(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh api repos/acme/web/branches/hotfix", ports.CommandResult{
			ExitCode: 1,
			Stderr:   "gh: Not Found (HTTP 404)",
		}).
		on("gh api repos/acme/web/git/ref/heads/main", ports.CommandResult{
			ExitCode: 0,
			Stdout:   "abc123\n",
		}).
		on("gh api repos/acme/web/git/refs", ports.CommandResult{ExitCode: 0})
	client := NewClient(runner)

	created, err := client.EnsureBranch(context.Background(), "acme/web", "hotfix", "main")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, runner.called("gh api repos/acme/web/git/refs -f ref=refs/heads/hotfix -f sha=abc123"))
}

func TestEnsureBranch_NoOpWhenPresent(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh api repos/acme/web/branches/hotfix", ports.CommandResult{ExitCode: 0})
	client := NewClient(runner)

	created, err := client.EnsureBranch(context.Background(), "acme/web", "hotfix", "main")
	require.NoError(t, err)
	assert.False(t, created)
	assert.False(t, runner.called("gh api repos/acme/web/git/refs "))
}

func TestEnsureBranch_LostRaceIsNotCreated(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh api repos/acme/web/branches/hotfix", ports.CommandResult{
			ExitCode: 1,
			Stderr:   "gh: Not Found (HTTP 404)",
		}).
		on("gh api repos/acme/web/git/ref/heads/main", ports.CommandResult{
			ExitCode: 0,
			Stdout:   "abc123",
		}).
		on("gh api repos/acme/web/git/refs", ports.CommandResult{
			ExitCode: 1,
			Stderr:   "Reference already exists",
		})
	client := NewClient(runner)

	created, err := client.EnsureBranch(context.Background(), "acme/web", "hotfix", "main")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestRevertCommit_SkipsWhenAlreadyReverted(t *testing.T) {
	runner := (&fakeRunner{}).
		on("git clone", ports.CommandResult{ExitCode: 0}).
		on("git -C", ports.CommandResult{
			ExitCode: 0,
			Stdout:   "Revert \"break prod\"\n\nThis reverts commit deadbeef.\n",
		})
	client := NewClient(runner)

	err := client.RevertCommit(context.Background(), "acme/web", "hotfix", "deadbeef")
	require.NoError(t, err)
	for _, call := range runner.calls {
		assert.NotContains(t, call, "revert --no-edit")
		assert.NotContains(t, call, "push origin")
	}
}

func TestRevertCommit_RevertsAndPushes(t *testing.T) {
	runner := &fakeRunner{}
	runner.on("git clone", ports.CommandResult{ExitCode: 0})
	runner.responses = append(runner.responses,
		fakeResponse{prefix: "git -C", result: ports.CommandResult{ExitCode: 0, Stdout: "fix typo\n"}},
	)
	client := NewClient(runner)

	err := client.RevertCommit(context.Background(), "acme/web", "hotfix", "deadbeef")
	require.NoError(t, err)

	var reverted, pushed bool
	for _, call := range runner.calls {
		if strings.Contains(call, "revert --no-edit deadbeef") {
			reverted = true
		}
		if strings.Contains(call, "push origin hotfix") {
			pushed = true
		}
	}
	assert.True(t, reverted)
	assert.True(t, pushed)
}

func TestEnsurePullRequest_ReusesOpenPR(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh pr list", ports.CommandResult{
			ExitCode: 0,
			Stdout:   `[{"number":42,"url":"https://github.com/acme/web/pull/42","state":"OPEN"}]`,
		})
	client := NewClient(runner)

	pr, err := client.EnsurePullRequest(context.Background(), ports.PullRequestOptions{
		Repo: "acme/web",
		Head: "hotfix",
		Base: "main",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "open", pr.State)
	assert.False(t, runner.called("gh pr create"))
}

func TestEnsurePullRequest_CreatesWhenNoneOpen(t *testing.T) {
	runner := &fakeRunner{}
	listCount := 0
	runner.responses = append(runner.responses, fakeResponse{prefix: "gh pr create", result: ports.CommandResult{
		ExitCode: 0,
		Stdout:   "https://github.com/acme/web/pull/7\n",
	}})
	client := NewClient(&listSwitchingRunner{inner: runner, listCount: &listCount})

	pr, err := client.EnsurePullRequest(context.Background(), ports.PullRequestOptions{
		Repo:  "acme/web",
		Head:  "hotfix",
		Base:  "main",
		Title: "Revert bad deploy",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, pr.Number)
	assert.Equal(t, 2, listCount)
}

// listSwitchingRunner returns an empty PR list on the first call and a
// populated one afterwards, modelling create-then-read.
type listSwitchingRunner struct {
	inner     *fakeRunner
	listCount *int
}

func (r *listSwitchingRunner) Run(ctx context.Context, name string, args ...string) (ports.CommandResult, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	if strings.HasPrefix(call, "gh pr list") {
		*r.listCount++
		if *r.listCount == 1 {
			return ports.CommandResult{ExitCode: 0, Stdout: "[]"}, nil
		}
		return ports.CommandResult{
			ExitCode: 0,
			Stdout:   `[{"number":7,"url":"https://github.com/acme/web/pull/7","state":"OPEN"}]`,
		}, nil
	}
	return r.inner.Run(ctx, name, args...)
}

func TestPullRequestStatus(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh pr view 42", ports.CommandResult{
			ExitCode: 0,
			Stdout:   `{"number":42,"url":"https://github.com/acme/web/pull/42","state":"MERGED","reviewDecision":"APPROVED"}`,
		})
	client := NewClient(runner)

	pr, err := client.PullRequestStatus(context.Background(), "acme/web", 42)
	require.NoError(t, err)
	assert.Equal(t, "merged", pr.State)
	assert.True(t, pr.Merged())
	assert.Equal(t, ports.ReviewApproved, pr.Review)
}

func TestPullRequestStatus_ChangesRequested(t *testing.T) {
	runner := (&fakeRunner{}).
		on("gh pr view 9", ports.CommandResult{
			ExitCode: 0,
			Stdout:   `{"number":9,"url":"u","state":"OPEN","reviewDecision":"CHANGES_REQUESTED"}`,
		})
	client := NewClient(runner)

	pr, err := client.PullRequestStatus(context.Background(), "acme/web", 9)
	require.NoError(t, err)
	assert.False(t, pr.Merged())
	assert.Equal(t, ports.ReviewChangesRequested, pr.Review)
}
