package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"archlens/internal/report"
)

const defaultListLimit = 20

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT,
			fingerprint TEXT,
			arch_count INTEGER,
			signal_count INTEGER,
			report JSON
		);`,
		`CREATE TABLE IF NOT EXISTS run_archs (
			run_id TEXT,
			arch_id TEXT,
			name TEXT,
			level TEXT,
			domain TEXT,
			framework TEXT,
			component_count INTEGER,
			PRIMARY KEY (run_id, arch_id)
		);`,
		`CREATE TABLE IF NOT EXISTS findings (
			run_id TEXT,
			analyzer TEXT,
			code TEXT,
			severity TEXT,
			message TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint);`,
		`CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun writes the run row plus its per-architecture and per-signal child
// rows in one transaction. Child rows are snapshots: a re-save of the same
// run id replaces them instead of accumulating.
func (s *SQLiteStore) SaveRun(ctx context.Context, fingerprint string, r *report.RunReport) error {
	if r == nil || r.RunID == "" {
		return errors.New("cannot save a run without an id")
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	createdAt := time.Now().UTC()
	if parsed, perr := time.Parse(time.RFC3339, r.GeneratedAt); perr == nil {
		createdAt = parsed.UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, fingerprint, arch_count, signal_count, report)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at=excluded.created_at,
			fingerprint=excluded.fingerprint,
			arch_count=excluded.arch_count,
			signal_count=excluded.signal_count,
			report=excluded.report
	`, r.RunID, createdAt.Format(time.RFC3339), fingerprint, len(r.Architectures), len(r.Signals), raw)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_archs WHERE run_id = ?", r.RunID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM findings WHERE run_id = ?", r.RunID); err != nil {
		return err
	}

	archStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_archs (run_id, arch_id, name, level, domain, framework, component_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer archStmt.Close()

	for _, a := range r.Architectures {
		if _, err := archStmt.Exec(r.RunID, a.ID, a.Name, a.Level, a.Domain, a.Framework, a.ComponentCount); err != nil {
			return err
		}
	}

	findingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (run_id, analyzer, code, severity, message)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer findingStmt.Close()

	for _, sig := range r.Signals {
		if _, err := findingStmt.Exec(r.RunID, sig.Source, sig.Code, sig.Severity, sig.Message); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*StoredRun, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, created_at, fingerprint, arch_count, signal_count, report FROM runs WHERE id = ?", id)

	var run StoredRun
	var createdAt string
	var raw []byte
	if err := row.Scan(&run.ID, &createdAt, &run.Fingerprint, &run.ArchCount, &run.SignalCount, &raw); err != nil {
		return nil, err
	}
	run.CreatedAt = parseStoredTime(createdAt)

	var rep report.RunReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode stored report: %w", err)
	}
	run.Report = &rep
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]StoredRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, fingerprint, arch_count, signal_count
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []StoredRun
	for rows.Next() {
		run, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) FindByFingerprint(ctx context.Context, fingerprint string) (*StoredRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, fingerprint, arch_count, signal_count
		FROM runs WHERE fingerprint = ? ORDER BY created_at DESC, id DESC LIMIT 1
	`, fingerprint)

	run, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*StoredRun, error) {
	var run StoredRun
	var createdAt string
	if err := row.Scan(&run.ID, &createdAt, &run.Fingerprint, &run.ArchCount, &run.SignalCount); err != nil {
		return nil, err
	}
	run.CreatedAt = parseStoredTime(createdAt)
	return &run, nil
}

func parseStoredTime(v string) time.Time {
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
