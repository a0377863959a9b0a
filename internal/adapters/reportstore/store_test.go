package reportstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

func sampleReport(runID string, startedAt time.Time) pipeline.RunReport {
	return pipeline.RunReport{
		RunID:       runID,
		Pipeline:    "deploy-staging",
		Environment: "staging",
		Status:      pipeline.RunCompleted,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(42 * time.Second),
		Steps: []pipeline.StepRecord{
			{Name: "cluster:apply", Kind: "mutate", Status: "success", Attempts: 1},
		},
		Context: map[string]string{"env.name": "staging"},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := NewFileStore(t.TempDir())
	report := sampleReport("run-1", time.Now().UTC().Truncate(time.Second))

	require.NoError(t, store.Save(context.Background(), report))

	loaded, err := store.Get(context.Background(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, report.RunID, loaded.RunID)
	assert.Equal(t, report.Pipeline, loaded.Pipeline)
	assert.Equal(t, report.Status, loaded.Status)
	assert.Equal(t, report.Context, loaded.Context)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, "cluster:apply", loaded.Steps[0].Name)
}

func TestGet_UnknownRunID(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrReportNotFound)
}

func TestSave_EmptyRunIDRejected(t *testing.T) {
	store := NewFileStore(t.TempDir())

	err := store.Save(context.Background(), pipeline.RunReport{})
	assert.Error(t, err)
}

func TestSave_SameRunIDOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir())
	started := time.Now().UTC()

	first := sampleReport("run-1", started)
	require.NoError(t, store.Save(context.Background(), first))

	second := sampleReport("run-1", started)
	second.Status = pipeline.RunHaltedFatal
	require.NoError(t, store.Save(context.Background(), second))

	loaded, err := store.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunHaltedFatal, loaded.Status)

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestList_MostRecentFirst(t *testing.T) {
	store := NewFileStore(t.TempDir())
	base := time.Now().UTC()

	require.NoError(t, store.Save(context.Background(), sampleReport("run-old", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(context.Background(), sampleReport("run-new", base)))
	require.NoError(t, store.Save(context.Background(), sampleReport("run-mid", base.Add(-time.Hour))))

	reports, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "run-new", reports[0].RunID)
	assert.Equal(t, "run-mid", reports[1].RunID)
	assert.Equal(t, "run-old", reports[2].RunID)
}

func TestList_EmptyStore(t *testing.T) {
	store := NewFileStore(t.TempDir())

	reports, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestCleanup_RemovesOldReports(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	base := time.Now().UTC()

	require.NoError(t, store.Save(context.Background(), sampleReport("run-old", base.Add(-48*time.Hour))))
	require.NoError(t, store.Save(context.Background(), sampleReport("run-new", base)))

	removed, err := store.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(context.Background(), "run-old")
	assert.ErrorIs(t, err, ports.ErrReportNotFound)

	_, err = store.Get(context.Background(), "run-new")
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "run-old.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestGet_CorruptReport(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, store.Save(context.Background(), sampleReport("run-1", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run-1.yaml"), []byte("{not yaml"), 0o644))

	_, err := store.Get(context.Background(), "run-1")
	assert.Error(t, err)
}
