package ports

import "context"

// ReviewDecision is the aggregate review state of a pull request.
type ReviewDecision string

const (
	// ReviewApproved indicates the change has the required approvals.
	ReviewApproved ReviewDecision = "approved"
	// ReviewChangesRequested indicates a reviewer blocked the change.
	ReviewChangesRequested ReviewDecision = "changes-requested"
	// ReviewPending indicates review has not concluded.
	ReviewPending ReviewDecision = "pending"
)

// PullRequest describes a pull request on the version-control host.
type PullRequest struct {
	Number int
	URL    string
	State  string // open, merged, closed
	Review ReviewDecision
}

// Merged reports whether the pull request has been merged.
func (p PullRequest) Merged() bool {
	return p.State == "merged"
}

// PullRequestOptions configures opening a pull request.
type PullRequestOptions struct {
	Repo  string
	Head  string
	Base  string
	Title string
	Body  string
}

// VCSHost is the version-control host port. All branch and pull-request
// operations are create-if-absent so mutating steps stay idempotent.
type VCSHost interface {
	// BranchExists reports whether branch exists in repo.
	BranchExists(ctx context.Context, repo, branch string) (bool, error)

	// EnsureBranch creates branch from base if it does not exist.
	// Returns true when the call created the branch.
	EnsureBranch(ctx context.Context, repo, branch, base string) (bool, error)

	// RevertCommit adds a revert of the given commit onto branch.
	// Reverting a commit that is already reverted on the branch is a no-op.
	RevertCommit(ctx context.Context, repo, branch, commit string) error

	// EnsurePullRequest opens a pull request for head, or returns the
	// already-open one for the same head branch.
	EnsurePullRequest(ctx context.Context, opts PullRequestOptions) (PullRequest, error)

	// PullRequestStatus returns the current state of a pull request.
	PullRequestStatus(ctx context.Context, repo string, number int) (PullRequest, error)
}
