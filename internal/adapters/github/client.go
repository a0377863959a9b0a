// Package github implements the VCSHost port using the gh and git CLIs.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/relay/internal/ports"
)

// Client implements ports.VCSHost.
type Client struct {
	runner ports.CommandRunner
}

// NewClient creates a new GitHub client.
func NewClient(runner ports.CommandRunner) *Client {
	return &Client{runner: runner}
}

// BranchExists reports whether branch exists in repo.
func (c *Client) BranchExists(ctx context.Context, repo, branch string) (bool, error) {
	result, err := c.runner.Run(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/branches/%s", repo, branch))
	if err != nil {
		return false, fmt.Errorf("checking branch %s: %w", branch, err)
	}
	if result.Success() {
		return true, nil
	}
	if strings.Contains(result.Stderr, "Not Found") || strings.Contains(result.Stdout, "Not Found") {
		return false, nil
	}
	return false, fmt.Errorf("checking branch %s: %s", branch, result.Stderr)
}

// EnsureBranch creates branch from base when absent. Returns true when this
// call created it. A concurrent creation by another run is treated as
// already-exists, keeping the operation idempotent.
func (c *Client) EnsureBranch(ctx context.Context, repo, branch, base string) (bool, error) {
	exists, err := c.BranchExists(ctx, repo, branch)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	sha, err := c.refSHA(ctx, repo, base)
	if err != nil {
		return false, err
	}

	result, err := c.runner.Run(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/git/refs", repo),
		"-f", "ref=refs/heads/"+branch,
		"-f", "sha="+sha)
	if err != nil {
		return false, fmt.Errorf("creating branch %s: %w", branch, err)
	}
	if !result.Success() {
		if strings.Contains(result.Stderr, "already exists") {
			return false, nil
		}
		return false, fmt.Errorf("creating branch %s: %s", branch, result.Stderr)
	}
	return true, nil
}

// refSHA resolves the head commit of a branch.
func (c *Client) refSHA(ctx context.Context, repo, branch string) (string, error) {
	result, err := c.runner.Run(ctx, "gh", "api",
		fmt.Sprintf("repos/%s/git/ref/heads/%s", repo, branch),
		"--jq", ".object.sha")
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", branch, err)
	}
	if !result.Success() {
		return "", fmt.Errorf("resolving %s: %s", branch, result.Stderr)
	}
	return strings.TrimSpace(result.Stdout), nil
}

// RevertCommit adds a revert of commit onto branch. When the branch already
// carries the revert, the call is a no-op.
func (c *Client) RevertCommit(ctx context.Context, repo, branch, commit string) error {
	dir, err := os.MkdirTemp("", "relay-revert-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()

	result, err := c.runner.Run(ctx, "git", "clone",
		"--branch", branch, "--single-branch", "--depth", "50",
		fmt.Sprintf("https://github.com/%s.git", repo), dir)
	if err != nil {
		return fmt.Errorf("cloning %s: %w", repo, err)
	}
	if !result.Success() {
		return fmt.Errorf("cloning %s: %s", repo, result.Stderr)
	}

	// Idempotence check: git writes "This reverts commit <sha>." into the
	// revert commit message.
	result, err = c.runner.Run(ctx, "git", "-C", dir, "log", "--format=%B", "-n", "50")
	if err != nil {
		return err
	}
	if strings.Contains(result.Stdout, "This reverts commit "+commit) {
		return nil
	}

	result, err = c.runner.Run(ctx, "git", "-C", dir, "revert", "--no-edit", commit)
	if err != nil {
		return fmt.Errorf("reverting %s: %w", commit, err)
	}
	if !result.Success() {
		return fmt.Errorf("reverting %s: %s", commit, result.Stderr)
	}

	result, err = c.runner.Run(ctx, "git", "-C", dir, "push", "origin", branch)
	if err != nil {
		return fmt.Errorf("pushing %s: %w", branch, err)
	}
	if !result.Success() {
		return fmt.Errorf("pushing %s: %s", branch, result.Stderr)
	}
	return nil
}

// prListEntry is the JSON shape of gh pr list output.
type prListEntry struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	State  string `json:"state"`
}

// EnsurePullRequest opens a pull request for head, or returns the open one
// with the same head branch.
func (c *Client) EnsurePullRequest(ctx context.Context, opts ports.PullRequestOptions) (ports.PullRequest, error) {
	existing, found, err := c.findOpenPR(ctx, opts.Repo, opts.Head)
	if err != nil {
		return ports.PullRequest{}, err
	}
	if found {
		return existing, nil
	}

	result, err := c.runner.Run(ctx, "gh", "pr", "create",
		"--repo", opts.Repo,
		"--head", opts.Head,
		"--base", opts.Base,
		"--title", opts.Title,
		"--body", opts.Body)
	if err != nil {
		return ports.PullRequest{}, fmt.Errorf("opening pull request: %w", err)
	}
	if !result.Success() {
		// gh refuses to open a second PR for the same head; fall back
		// to the existing one.
		if strings.Contains(result.Stderr, "already exists") {
			existing, found, err = c.findOpenPR(ctx, opts.Repo, opts.Head)
			if err == nil && found {
				return existing, nil
			}
		}
		return ports.PullRequest{}, fmt.Errorf("opening pull request: %s", result.Stderr)
	}

	existing, found, err = c.findOpenPR(ctx, opts.Repo, opts.Head)
	if err != nil {
		return ports.PullRequest{}, err
	}
	if !found {
		return ports.PullRequest{}, fmt.Errorf("pull request for %s not visible after creation", opts.Head)
	}
	return existing, nil
}

// findOpenPR looks up the open pull request for a head branch.
func (c *Client) findOpenPR(ctx context.Context, repo, head string) (ports.PullRequest, bool, error) {
	result, err := c.runner.Run(ctx, "gh", "pr", "list",
		"--repo", repo,
		"--head", head,
		"--state", "open",
		"--json", "number,url,state")
	if err != nil {
		return ports.PullRequest{}, false, fmt.Errorf("listing pull requests: %w", err)
	}
	if !result.Success() {
		return ports.PullRequest{}, false, fmt.Errorf("listing pull requests: %s", result.Stderr)
	}

	var entries []prListEntry
	if err := json.Unmarshal([]byte(result.Stdout), &entries); err != nil {
		return ports.PullRequest{}, false, fmt.Errorf("parsing pull request list: %w", err)
	}
	if len(entries) == 0 {
		return ports.PullRequest{}, false, nil
	}
	return ports.PullRequest{
		Number: entries[0].Number,
		URL:    entries[0].URL,
		State:  strings.ToLower(entries[0].State),
	}, true, nil
}

// prViewResponse is the JSON shape of gh pr view output.
type prViewResponse struct {
	Number         int    `json:"number"`
	URL            string `json:"url"`
	State          string `json:"state"`
	ReviewDecision string `json:"reviewDecision"`
}

// PullRequestStatus returns the current state of a pull request.
func (c *Client) PullRequestStatus(ctx context.Context, repo string, number int) (ports.PullRequest, error) {
	result, err := c.runner.Run(ctx, "gh", "pr", "view", strconv.Itoa(number),
		"--repo", repo,
		"--json", "number,url,state,reviewDecision")
	if err != nil {
		return ports.PullRequest{}, fmt.Errorf("querying pull request #%d: %w", number, err)
	}
	if !result.Success() {
		return ports.PullRequest{}, fmt.Errorf("querying pull request #%d: %s", number, result.Stderr)
	}

	var resp prViewResponse
	if err := json.Unmarshal([]byte(result.Stdout), &resp); err != nil {
		return ports.PullRequest{}, fmt.Errorf("parsing pull request #%d: %w", number, err)
	}

	return ports.PullRequest{
		Number: resp.Number,
		URL:    resp.URL,
		State:  strings.ToLower(resp.State),
		Review: mapReviewDecision(resp.ReviewDecision),
	}, nil
}

// mapReviewDecision converts the GitHub review decision into the port's
// vocabulary.
func mapReviewDecision(decision string) ports.ReviewDecision {
	switch decision {
	case "APPROVED":
		return ports.ReviewApproved
	case "CHANGES_REQUESTED":
		return ports.ReviewChangesRequested
	default:
		return ports.ReviewPending
	}
}

// Ensure Client implements ports.VCSHost.
var _ ports.VCSHost = (*Client)(nil)
