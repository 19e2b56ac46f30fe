package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/model"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	message TEXT,
	files TEXT,
	started_at DATETIME NOT NULL,
	finished_at DATETIME
);
CREATE TABLE IF NOT EXISTS run_errors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	error_kind TEXT NOT NULL,
	error_message TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

// Store keeps the history of pipeline and dashboard runs.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, apperror.Config("history.db_path", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, apperror.Config("history.db_path", err)
	}
	return s, nil
}

// New wraps an existing connection without touching the schema.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create history tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a new run.
func (s *Store) SaveRun(ctx context.Context, run model.Run) error {
	files, err := json.Marshal(run.Files)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, status, message, files, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Status, run.Message, string(files), run.StartedAt.UTC(), nullTime(run.FinishedAt))
	return err
}

// FinishRun records the final status of a run.
func (s *Store) FinishRun(ctx context.Context, run model.Run) error {
	files, err := json.Marshal(run.Files)
	if err != nil {
		return err
	}
	finished := run.FinishedAt
	if finished == nil {
		now := s.now().UTC()
		finished = &now
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, message = ?, files = ?, finished_at = ? WHERE id = ?`,
		run.Status, run.Message, string(files), finished.UTC(), run.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

// SaveRunError records an error for a run, tagged with its kind.
func (s *Store) SaveRunError(ctx context.Context, runID string, err error) error {
	if err == nil {
		return nil
	}
	_, e := s.db.ExecContext(ctx,
		`INSERT INTO run_errors (run_id, error_kind, error_message, created_at) VALUES (?, ?, ?, ?)`,
		runID, apperror.KindOf(err).String(), err.Error(), s.now().UTC())
	return e
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	query := `SELECT id, kind, status, message, files, started_at, finished_at FROM runs ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun fetches one run.
func (s *Store) GetRun(ctx context.Context, id string) (model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, status, message, files, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// ListRunErrors returns the errors recorded for a run, oldest first.
func (s *Store) ListRunErrors(ctx context.Context, runID string) ([]model.RunError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, error_kind, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RunError{}
	for rows.Next() {
		var e model.RunError
		if err := rows.Scan(&e.ID, &e.RunID, &e.ErrorKind, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (model.Run, error) {
	var (
		run      model.Run
		message  sql.NullString
		files    sql.NullString
		finished sql.NullTime
	)
	if err := sc.Scan(&run.ID, &run.Kind, &run.Status, &message, &files, &run.StartedAt, &finished); err != nil {
		return model.Run{}, err
	}
	run.Message = message.String
	if files.Valid && files.String != "" {
		if err := json.Unmarshal([]byte(files.String), &run.Files); err != nil {
			return model.Run{}, fmt.Errorf("decode files of run %s: %w", run.ID, err)
		}
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
