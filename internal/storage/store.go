package storage

import (
	"context"
	"time"

	"archlens/internal/report"
)

// RunStore persists analysis runs for later inspection and change detection.
type RunStore interface {
	// SaveRun stores a finished run keyed by its run id. Saving the same
	// run id again replaces the previous snapshot.
	SaveRun(ctx context.Context, fingerprint string, r *report.RunReport) error

	// GetRun loads a stored run including its full report artifact.
	GetRun(ctx context.Context, id string) (*StoredRun, error)

	// ListRuns returns run summaries, newest first. The report artifact is
	// not loaded. A non-positive limit falls back to a default.
	ListRuns(ctx context.Context, limit int) ([]StoredRun, error)

	// FindByFingerprint returns the newest run summary recorded for the
	// given input fingerprint, or nil when no run matches.
	FindByFingerprint(ctx context.Context, fingerprint string) (*StoredRun, error)

	Close() error
}

// StoredRun is one persisted analysis run. Report is nil on summary reads.
type StoredRun struct {
	ID          string
	CreatedAt   time.Time
	Fingerprint string
	ArchCount   int
	SignalCount int
	Report      *report.RunReport
}
