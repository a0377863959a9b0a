package steps

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/relay/internal/domain/environment"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

// defaultBaseBranch is used when neither the definition nor the environment
// names one.
const defaultBaseBranch = "main"

// vcsAnalyzeStep reads the review and merge state of a pull request into the
// execution context.
type vcsAnalyzeStep struct {
	baseStep
	vcs     ports.VCSHost
	profile environment.Profile
	with    map[string]string
}

func (s *vcsAnalyzeStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	repo := firstOf(s.with["repo"], s.profile.Repo)
	if repo == "" {
		return pipeline.NewValidationError(s.name, "no repository configured for this environment")
	}

	raw := firstOf(s.with["pr_number"], ec.Get(KeyPRNumber))
	if raw == "" {
		return pipeline.NewMissingPreconditionError(s.name, KeyPRNumber)
	}

	if rc.DryRun() {
		ec.Set(KeyPRState, "open")
		ec.Set(KeyPRReview, string(ports.ReviewPending))
		ec.Set(KeyPRURL, "dry-run")
		return nil
	}

	number, err := strconv.Atoi(raw)
	if err != nil {
		return pipeline.NewValidationError(s.name, fmt.Sprintf("pull request number %q is not numeric", raw))
	}

	pr, err := s.vcs.PullRequestStatus(rc.Context(), repo, number)
	if err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}

	ec.Set(KeyPRState, pr.State)
	ec.Set(KeyPRReview, string(pr.Review))
	ec.Set(KeyPRURL, pr.URL)
	return nil
}

// vcsRevertBranchStep ensures a branch carrying a revert of the given commit
// exists. Both halves are idempotent, so re-running after a partial failure
// is safe.
type vcsRevertBranchStep struct {
	baseStep
	vcs     ports.VCSHost
	profile environment.Profile
	with    map[string]string
}

func (s *vcsRevertBranchStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	repo := firstOf(s.with["repo"], s.profile.Repo)
	if repo == "" {
		return pipeline.NewValidationError(s.name, "no repository configured for this environment")
	}

	commit := firstOf(s.with["commit"], ec.Get(KeyCommit))
	if commit == "" {
		return pipeline.NewMissingPreconditionError(s.name, KeyCommit)
	}

	base := firstOf(s.with["base"], s.profile.BaseBranch, defaultBaseBranch)
	branch := firstOf(s.with["branch"], "revert-"+shortSHA(commit))

	if rc.DryRun() {
		ec.Set(KeyBranch, branch)
		return nil
	}

	if _, err := s.vcs.EnsureBranch(rc.Context(), repo, branch, base); err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}
	if err := s.vcs.RevertCommit(rc.Context(), repo, branch, commit); err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}

	ec.Set(KeyBranch, branch)
	return nil
}

// vcsOpenPRStep opens a pull request for the prepared branch, reusing an
// already-open one for the same head.
type vcsOpenPRStep struct {
	baseStep
	vcs     ports.VCSHost
	profile environment.Profile
	with    map[string]string
}

func (s *vcsOpenPRStep) Run(rc pipeline.RunContext, ec *pipeline.ExecutionContext) error {
	repo := firstOf(s.with["repo"], s.profile.Repo)
	if repo == "" {
		return pipeline.NewValidationError(s.name, "no repository configured for this environment")
	}

	head := firstOf(s.with["head"], ec.Get(KeyBranch))
	if head == "" {
		return pipeline.NewMissingPreconditionError(s.name, KeyBranch)
	}

	if rc.DryRun() {
		ec.Set(KeyPRNumber, "0")
		ec.Set(KeyPRURL, "dry-run")
		return nil
	}

	pr, err := s.vcs.EnsurePullRequest(rc.Context(), ports.PullRequestOptions{
		Repo:  repo,
		Head:  head,
		Base:  firstOf(s.with["base"], s.profile.BaseBranch, defaultBaseBranch),
		Title: firstOf(s.with["title"], "Automated change from "+head),
		Body:  s.with["body"],
	})
	if err != nil {
		return pipeline.NewExternalCallError(s.name, err)
	}

	ec.Set(KeyPRNumber, strconv.Itoa(pr.Number))
	ec.Set(KeyPRURL, pr.URL)
	return nil
}

// shortSHA abbreviates a commit hash the way git log does.
func shortSHA(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
