// Package reportstore persists run reports on the local filesystem so that
// past runs can be inspected after process exit.
package reportstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
	"github.com/felixgeelhaar/relay/internal/ports"
)

// reportIndex stores metadata for all saved reports.
type reportIndex struct {
	Reports map[string]indexEntry `json:"reports"`
}

// indexEntry stores metadata for a single report.
type indexEntry struct {
	RunID       string    `json:"run_id"`
	Pipeline    string    `json:"pipeline"`
	Environment string    `json:"environment"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	Filename    string    `json:"filename"`
}

// FileStore implements ports.ReportStore using the local filesystem. Each
// report lives in its own YAML file next to a JSON index.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a new FileStore at the given base path.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{
		basePath: basePath,
	}
}

// Save persists a report. Saving the same run ID twice overwrites the
// previous report, which keeps re-runs idempotent.
func (s *FileStore) Save(ctx context.Context, report pipeline.RunReport) error {
	_ = ctx // Reserved for future cancellation support
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.RunID == "" {
		return fmt.Errorf("report has no run ID")
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return err
	}

	content, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	filename := report.RunID + ".yaml"
	reportPath := filepath.Join(s.basePath, filename)
	if err := os.WriteFile(reportPath, content, 0o644); err != nil {
		return err
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}

	index.Reports[report.RunID] = indexEntry{
		RunID:       report.RunID,
		Pipeline:    report.Pipeline,
		Environment: report.Environment,
		Status:      string(report.Status),
		StartedAt:   report.StartedAt,
		Filename:    filename,
	}

	if err := s.saveIndex(index); err != nil {
		// Clean up the report file on failure
		_ = os.Remove(reportPath)
		return err
	}

	return nil
}

// Get loads the report for a run ID.
func (s *FileStore) Get(ctx context.Context, runID string) (pipeline.RunReport, error) {
	_ = ctx // Reserved for future cancellation support
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return pipeline.RunReport{}, err
	}

	entry, ok := index.Reports[runID]
	if !ok {
		return pipeline.RunReport{}, ports.ErrReportNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, entry.Filename))
	if err != nil {
		return pipeline.RunReport{}, err
	}

	var report pipeline.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return pipeline.RunReport{}, fmt.Errorf("report %s is corrupt: %w", runID, err)
	}

	return report, nil
}

// List returns all stored reports, most recent first.
func (s *FileStore) List(ctx context.Context) ([]pipeline.RunReport, error) {
	_ = ctx // Reserved for future cancellation support
	s.mu.RLock()
	defer s.mu.RUnlock()

	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	entries := make([]indexEntry, 0, len(index.Reports))
	for _, entry := range index.Reports {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartedAt.After(entries[j].StartedAt)
	})

	reports := make([]pipeline.RunReport, 0, len(entries))
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(s.basePath, entry.Filename))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}

		var report pipeline.RunReport
		if err := yaml.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("report %s is corrupt: %w", entry.RunID, err)
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// Cleanup removes reports older than maxAge. Returns the number removed.
func (s *FileStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	_ = ctx // Reserved for future cancellation support
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.loadIndex()
	if err != nil {
		return 0, err
	}

	now := time.Now()
	count := 0
	toDelete := make([]string, 0)

	for runID, entry := range index.Reports {
		if now.Sub(entry.StartedAt) > maxAge {
			_ = os.Remove(filepath.Join(s.basePath, entry.Filename))
			toDelete = append(toDelete, runID)
			count++
		}
	}

	for _, runID := range toDelete {
		delete(index.Reports, runID)
	}

	if count > 0 {
		if err := s.saveIndex(index); err != nil {
			return count, err
		}
	}

	return count, nil
}

// loadIndex loads the report index from disk.
func (s *FileStore) loadIndex() (*reportIndex, error) {
	indexPath := filepath.Join(s.basePath, "index.json")

	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return &reportIndex{
			Reports: make(map[string]indexEntry),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var index reportIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}

	if index.Reports == nil {
		index.Reports = make(map[string]indexEntry)
	}

	return &index, nil
}

// saveIndex saves the report index to disk.
func (s *FileStore) saveIndex(index *reportIndex) error {
	indexPath := filepath.Join(s.basePath, "index.json")

	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(indexPath, data, 0o644)
}

// Ensure FileStore implements ReportStore.
var _ ports.ReportStore = (*FileStore)(nil)
