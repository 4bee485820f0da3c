package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archlens/internal/model"
	"archlens/internal/report"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func storedReport(generatedAt string, archIDs ...string) *report.RunReport {
	r := report.NewRunReport("analyze")
	r.GeneratedAt = generatedAt
	archs := make([]model.Architecture, 0, len(archIDs))
	for _, id := range archIDs {
		archs = append(archs, model.Architecture{ID: id, Name: id})
	}
	r.AttachArchitectures(archs, nil)
	r.AttachSignals([]model.Warning{
		{Code: "edge_dropped", Source: "adapter", Severity: model.SeverityWarning, Message: "unresolved endpoint"},
	})
	return r
}

func TestSQLiteStore_SaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := storedReport("2026-08-25T10:00:00Z", "checkout", "billing")
	require.NoError(t, store.SaveRun(ctx, "fp-one", r))

	got, err := store.GetRun(ctx, r.RunID)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, got.ID)
	assert.Equal(t, "fp-one", got.Fingerprint)
	assert.Equal(t, 2, got.ArchCount)
	assert.Equal(t, 1, got.SignalCount)
	assert.Equal(t, "2026-08-25T10:00:00Z", got.CreatedAt.UTC().Format(time.RFC3339))

	require.NotNil(t, got.Report)
	assert.Equal(t, r.RunID, got.Report.RunID)
	assert.Len(t, got.Report.Architectures, 2)
	assert.Len(t, got.Report.Signals, 1)
}

func TestSQLiteStore_GetRun_UnknownID(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetRun(context.Background(), "no-such-run")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SaveRun_ReplacesSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	r := storedReport("2026-08-25T10:00:00Z", "checkout", "billing")
	require.NoError(t, store.SaveRun(ctx, "fp-one", r))

	// Same run id saved again with fewer architectures: the old child rows
	// must not survive.
	updated := storedReport("2026-08-25T11:00:00Z", "checkout")
	updated.RunID = r.RunID
	require.NoError(t, store.SaveRun(ctx, "fp-two", updated))

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "fp-two", runs[0].Fingerprint)
	assert.Equal(t, 1, runs[0].ArchCount)
	assert.Nil(t, runs[0].Report)

	var archRows int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM run_archs WHERE run_id = ?", r.RunID).Scan(&archRows))
	assert.Equal(t, 1, archRows)
}

func TestSQLiteStore_ListRuns_NewestFirstWithLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	oldest := storedReport("2026-08-25T10:00:00Z", "a")
	middle := storedReport("2026-08-25T11:00:00Z", "b")
	newest := storedReport("2026-08-25T12:00:00Z", "c")
	require.NoError(t, store.SaveRun(ctx, "fp-a", oldest))
	require.NoError(t, store.SaveRun(ctx, "fp-b", middle))
	require.NoError(t, store.SaveRun(ctx, "fp-c", newest))

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newest.RunID, runs[0].ID)
	assert.Equal(t, middle.RunID, runs[1].ID)
}

func TestSQLiteStore_FindByFingerprint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := storedReport("2026-08-25T10:00:00Z", "a")
	second := storedReport("2026-08-25T11:00:00Z", "a")
	require.NoError(t, store.SaveRun(ctx, "fp-same", first))
	require.NoError(t, store.SaveRun(ctx, "fp-same", second))

	got, err := store.FindByFingerprint(ctx, "fp-same")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.RunID, got.ID)

	missing, err := store.FindByFingerprint(ctx, "fp-unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
