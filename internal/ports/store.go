package ports

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/relay/internal/domain/pipeline"
)

// ErrReportNotFound is returned when no report exists for a run ID.
var ErrReportNotFound = errors.New("run report not found")

// ReportStore persists run reports keyed by run ID so `relay status` can be
// answered after process exit.
type ReportStore interface {
	// Save persists a report. Saving the same run ID twice overwrites.
	Save(ctx context.Context, report pipeline.RunReport) error

	// Get loads the report for a run ID.
	Get(ctx context.Context, runID string) (pipeline.RunReport, error)

	// List returns all stored reports, most recent first.
	List(ctx context.Context) ([]pipeline.RunReport, error)

	// Cleanup removes reports older than maxAge and returns how many
	// were removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}
