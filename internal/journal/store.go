// Package journal records the renames performed by padcount runs in a SQLite
// database so that a run can be listed and undone later.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Status is the state of a journal entry.
type Status string

const (
	StatusRenamed Status = "renamed"
	StatusFailed  Status = "failed"
	StatusUndone  Status = "undone"
)

// ErrNoRuns is returned when the journal holds no runs.
var ErrNoRuns = errors.New("journal has no runs")

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one padcount invocation over one root.
type Run struct {
	ID         string
	Root       string
	Width      int
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress
	Renamed    int
	Failed     int
	Undone     int
}

// Entry is one attempted rename.
type Entry struct {
	ID        int64
	RunID     string
	OldPath   string
	NewPath   string
	Status    Status
	CreatedAt time.Time
}

// Store manages the SQLite journal database
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewStore opens (creating if needed) the journal at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection keeps ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath, now: time.Now}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
	}
	return t, nil
}

// BeginRun records the start of a run and returns its ID.
func (s *Store) BeginRun(ctx context.Context, root string, width int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, width, started_at) VALUES (?, ?, ?, ?)`,
		id, root, width, s.timestamp())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, s.timestamp(), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordEntry appends an entry to a run.
func (s *Store) RecordEntry(ctx context.Context, runID, oldPath, newPath string, status Status) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO renames (run_id, old_path, new_path, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, oldPath, newPath, string(status), s.timestamp())
	if err != nil {
		return 0, fmt.Errorf("insert rename: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// SetStatus updates the status of one entry.
func (s *Store) SetStatus(ctx context.Context, entryID int64, status Status) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE renames SET status = ? WHERE id = ?`, string(status), entryID)
	if err != nil {
		return fmt.Errorf("update rename %d: %w", entryID, err)
	}
	return nil
}

const runColumns = `r.id, r.root, r.width, r.started_at, r.finished_at,
	COALESCE(SUM(CASE WHEN e.status = 'renamed' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN e.status = 'failed' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN e.status = 'undone' THEN 1 ELSE 0 END), 0)`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var (
		run      Run
		started  string
		finished string
	)
	if err := row.Scan(&run.ID, &run.Root, &run.Width, &started, &finished,
		&run.Renamed, &run.Failed, &run.Undone); err != nil {
		return nil, err
	}
	var err error
	if run.StartedAt, err = parseTimestamp(started); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTimestamp(finished); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first (limit <= 0 means all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + `
		FROM runs r LEFT JOIN renames e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+`
		FROM runs r LEFT JOIN renames e ON e.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNoRuns
	}
	return runs[0], nil
}

// Entries returns the entries of a run in the order they were recorded.
func (s *Store) Entries(ctx context.Context, runID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, old_path, new_path, status, created_at
		FROM renames WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query renames: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			e       Entry
			status  string
			created string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.OldPath, &e.NewPath, &status, &created); err != nil {
			return nil, fmt.Errorf("scan rename: %w", err)
		}
		e.Status = Status(status)
		if e.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renames: %w", err)
	}
	return entries, nil
}
