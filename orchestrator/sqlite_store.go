package orchestrator

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a WorkflowStore persisting workflows to a local SQLite
// database. Subtasks and history are stored as JSON documents; listing
// reads only the summary columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) the database at path, creating parent
// directories as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// WAL for concurrent read/write access; busy timeout so writers retry
	// instead of immediately returning SQLITE_BUSY.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("exec %s: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id               TEXT PRIMARY KEY,
			original_request TEXT NOT NULL,
			status           TEXT NOT NULL,
			subtask_count    INTEGER NOT NULL,
			subtasks         TEXT NOT NULL,
			history          TEXT NOT NULL,
			created_at       DATETIME NOT NULL,
			completed_at     DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows(status, created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Save implements WorkflowStore.
func (s *SQLiteStore) Save(w *Workflow) error {
	subtasks, err := json.Marshal(w.Subtasks)
	if err != nil {
		return fmt.Errorf("marshal subtasks: %w", err)
	}
	history, err := json.Marshal(w.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	var completedAt any
	if w.CompletedAt != nil {
		completedAt = w.CompletedAt.UTC()
	}

	_, err = s.db.Exec(`
		INSERT INTO workflows (id, original_request, status, subtask_count, subtasks, history, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			subtask_count = excluded.subtask_count,
			subtasks = excluded.subtasks,
			history = excluded.history,
			completed_at = excluded.completed_at`,
		w.ID, w.OriginalRequest, string(w.Status), len(w.Subtasks),
		string(subtasks), string(history), w.CreatedAt.UTC(), completedAt,
	)
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", w.ID, err)
	}
	return nil
}

// Get implements WorkflowStore.
func (s *SQLiteStore) Get(id string) (*Workflow, error) {
	row := s.db.QueryRow(`
		SELECT id, original_request, status, subtasks, history, created_at, completed_at
		FROM workflows WHERE id = ?`, id)

	var (
		w           Workflow
		status      string
		subtasks    string
		history     string
		completedAt sql.NullTime
	)
	if err := row.Scan(&w.ID, &w.OriginalRequest, &status, &subtasks, &history, &w.CreatedAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("workflow %q not found", id)
		}
		return nil, fmt.Errorf("load workflow %s: %w", id, err)
	}

	w.Status = WorkflowStatus(status)
	if err := json.Unmarshal([]byte(subtasks), &w.Subtasks); err != nil {
		return nil, fmt.Errorf("unmarshal subtasks: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &w.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		w.CompletedAt = &t
	}
	return &w, nil
}

// List implements WorkflowStore.
func (s *SQLiteStore) List(statusFilter WorkflowStatus) ([]WorkflowSummary, error) {
	query := `SELECT id, original_request, status, subtask_count, created_at, completed_at
		FROM workflows`
	args := []any{}
	if statusFilter != "" {
		query += ` WHERE status = ?`
		args = append(args, string(statusFilter))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var summaries []WorkflowSummary
	for rows.Next() {
		var (
			sum         WorkflowSummary
			status      string
			completedAt sql.NullTime
		)
		if err := rows.Scan(&sum.ID, &sum.OriginalRequest, &status, &sum.SubtaskCount, &sum.CreatedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan workflow row: %w", err)
		}
		sum.Status = WorkflowStatus(status)
		if completedAt.Valid {
			t := completedAt.Time
			sum.CompletedAt = &t
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// PruneBefore deletes workflows created before the cutoff, returning the
// number removed. Callers own the retention schedule.
func (s *SQLiteStore) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM workflows WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune workflows: %w", err)
	}
	return res.RowsAffected()
}
