package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/relay/internal/adapters/logging"
	"github.com/felixgeelhaar/relay/internal/domain/definition"
	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/domain/settings"
	"github.com/felixgeelhaar/relay/internal/ports"
)

const testDefinition = `version: v0.1.0
pipelines:
  verify:
    description: Check PR state and announce it.
    steps:
      - name: check-pr
        kind: analyze
        uses: vcs:analyze
        requires: [env.repo]
        produces: [vcs.pr_state, vcs.pr_review, vcs.pr_url]
        with:
          pr_number: "42"
      - name: announce
        kind: notify
        uses: notify:webhook
        requires: [vcs.pr_state, run.id]
`

const testEnvironments = `[staging]
cluster_context = staging-ctx
namespace = web
repo = acme/web
base_branch = main
webhook_url = https://hooks.example.test/relay
`

// fakeVCS answers PR status queries.
type fakeVCS struct {
	status ports.PullRequest
	err    error
}

func (f *fakeVCS) BranchExists(context.Context, string, string) (bool, error) { return false, nil }
func (f *fakeVCS) EnsureBranch(context.Context, string, string, string) (bool, error) {
	return false, nil
}
func (f *fakeVCS) RevertCommit(context.Context, string, string, string) error { return nil }
func (f *fakeVCS) EnsurePullRequest(context.Context, ports.PullRequestOptions) (ports.PullRequest, error) {
	return ports.PullRequest{}, nil
}
func (f *fakeVCS) PullRequestStatus(context.Context, string, int) (ports.PullRequest, error) {
	return f.status, f.err
}

// memoryStore is an in-memory ReportStore.
type memoryStore struct {
	saved   []pipeline.RunReport
	saveErr error
}

func (m *memoryStore) Save(_ context.Context, report pipeline.RunReport) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, report)
	return nil
}

func (m *memoryStore) Get(_ context.Context, runID string) (pipeline.RunReport, error) {
	for _, r := range m.saved {
		if r.RunID == runID {
			return r, nil
		}
	}
	return pipeline.RunReport{}, ports.ErrReportNotFound
}

func (m *memoryStore) List(context.Context) ([]pipeline.RunReport, error) {
	return m.saved, nil
}

func (m *memoryStore) Cleanup(_ context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	kept := make([]pipeline.RunReport, 0, len(m.saved))
	removed := 0
	for _, r := range m.saved {
		if r.StartedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.saved = kept
	return removed, nil
}

// recordingNotifier captures the URL it was built for.
type recordingNotifier struct {
	url  string
	sent []ports.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n ports.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type fixture struct {
	service  *Service
	store    *memoryStore
	notifier *recordingNotifier
	request  RunRequest
}

func newFixture(t *testing.T, vcs ports.VCSHost, store *memoryStore) *fixture {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "relay.yaml")
	envPath := filepath.Join(dir, "environments.ini")
	require.NoError(t, os.WriteFile(configPath, []byte(testDefinition), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte(testEnvironments), 0o644))

	notifier := &recordingNotifier{}
	service := NewService(Deps{
		VCS: vcs,
		NewNotifier: func(url string) ports.Notifier {
			notifier.url = url
			return notifier
		},
		Store:    store,
		Logger:   logging.NewNopLogger(),
		Settings: settings.Default(),
	})

	return &fixture{
		service:  service,
		store:    store,
		notifier: notifier,
		request: RunRequest{
			ConfigPath:       configPath,
			EnvironmentsPath: envPath,
			Pipeline:         "verify",
			Environment:      "staging",
		},
	}
}

func TestRun_CompletesAndPersists(t *testing.T) {
	vcs := &fakeVCS{status: ports.PullRequest{
		Number: 42, URL: "https://example.test/pr/42",
		State: "open", Review: ports.ReviewApproved,
	}}
	f := newFixture(t, vcs, &memoryStore{})

	report, err := f.service.Run(context.Background(), f.request)
	require.NoError(t, err)

	assert.Equal(t, pipeline.RunCompleted, report.Status)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "verify", report.Pipeline)
	assert.Equal(t, "staging", report.Environment)
	assert.Equal(t, "open", report.Context["vcs.pr_state"])
	assert.Equal(t, report.RunID, report.Context["run.id"])

	require.Len(t, f.store.saved, 1)
	assert.Equal(t, report.RunID, f.store.saved[0].RunID)

	// Notifier was built with the profile's webhook URL and fired.
	assert.Equal(t, "https://hooks.example.test/relay", f.notifier.url)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, report.RunID, f.notifier.sent[0].RunID)
}

func TestRun_HaltedRunIsStillPersisted(t *testing.T) {
	vcs := &fakeVCS{err: errors.New("gh: connection refused")}
	f := newFixture(t, vcs, &memoryStore{})

	report, err := f.service.Run(context.Background(), f.request)
	require.NoError(t, err)

	assert.Equal(t, pipeline.RunHaltedFatal, report.Status)
	assert.Equal(t, "check-pr", report.HaltedAt)
	require.Len(t, f.store.saved, 1)
	assert.Empty(t, f.notifier.sent)
}

func TestRun_UnknownPipeline(t *testing.T) {
	f := newFixture(t, &fakeVCS{}, &memoryStore{})
	f.request.Pipeline = "nonexistent"

	_, err := f.service.Run(context.Background(), f.request)
	require.Error(t, err)

	var uerr *definition.UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, definition.ErrCodeUnknownPipeline, uerr.Code)
	assert.Empty(t, f.store.saved)
}

func TestRun_UnknownEnvironment(t *testing.T) {
	f := newFixture(t, &fakeVCS{}, &memoryStore{})
	f.request.Environment = "mars"

	_, err := f.service.Run(context.Background(), f.request)
	assert.Error(t, err)
	assert.Empty(t, f.store.saved)
}

func TestRun_PersistenceFailureDoesNotMaskOutcome(t *testing.T) {
	vcs := &fakeVCS{status: ports.PullRequest{State: "open"}}
	f := newFixture(t, vcs, &memoryStore{saveErr: errors.New("disk full")})

	report, err := f.service.Run(context.Background(), f.request)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunCompleted, report.Status)
}

func TestRun_DryRunTouchesNothing(t *testing.T) {
	vcs := &fakeVCS{err: errors.New("must not be called")}
	f := newFixture(t, vcs, &memoryStore{})
	f.request.DryRun = true

	report, err := f.service.Run(context.Background(), f.request)
	require.NoError(t, err)

	assert.Equal(t, pipeline.RunCompleted, report.Status)
	assert.True(t, report.DryRun)
	assert.Empty(t, f.notifier.sent)
}

func TestStatusAndRuns(t *testing.T) {
	store := &memoryStore{}
	vcs := &fakeVCS{status: ports.PullRequest{State: "open"}}
	f := newFixture(t, vcs, store)

	report, err := f.service.Run(context.Background(), f.request)
	require.NoError(t, err)

	loaded, err := f.service.Status(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, loaded.RunID)

	_, err = f.service.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrReportNotFound)

	all, err := f.service.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPrune_RemovesOnlyOldReports(t *testing.T) {
	store := &memoryStore{saved: []pipeline.RunReport{
		{RunID: "stale", StartedAt: time.Now().Add(-48 * time.Hour)},
		{RunID: "fresh", StartedAt: time.Now()},
	}}
	f := newFixture(t, &fakeVCS{}, store)

	removed, err := f.service.Prune(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	require.Len(t, store.saved, 1)
	assert.Equal(t, "fresh", store.saved[0].RunID)
}

func TestValidate(t *testing.T) {
	f := newFixture(t, &fakeVCS{}, &memoryStore{})

	doc, err := f.service.Validate(f.request.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"verify"}, doc.Names())

	_, err = f.service.Validate(filepath.Join(t.TempDir(), "missing.yaml"))
	var uerr *definition.UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, definition.ErrCodeNotFound, uerr.Code)
}
