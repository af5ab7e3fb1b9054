// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuifit/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			workout_id TEXT NOT NULL,
			workout_name TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			status TEXT NOT NULL,
			steps_done INTEGER NOT NULL,
			steps_total INTEGER NOT NULL,
			active_seconds INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ended_at ON runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_workout_id ON runs(workout_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished or cancelled run. An empty RunID is replaced
// with a new uuid; the stored record is returned.
func (s *Store) InsertRun(ctx context.Context, run model.RunRecord) (model.RunRecord, error) {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	switch run.Status {
	case model.RunFinished, model.RunCancelled:
	default:
		return model.RunRecord{}, fmt.Errorf("invalid run status %q", run.Status)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, workout_id, workout_name, started_at, ended_at, status, steps_done, steps_total, active_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.WorkoutID,
		run.WorkoutName,
		run.StartedAt.UTC().Format(timeLayout),
		run.EndedAt.UTC().Format(timeLayout),
		run.Status,
		run.StepsDone,
		run.StepsTotal,
		run.ActiveSeconds,
	)
	if err != nil {
		return model.RunRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.RunRecord{}, err
	}
	run.ID = id
	return run, nil
}

// ListRuns returns runs matching the filter, oldest first. Last keeps only
// the most recent N runs.
func (s *Store) ListRuns(ctx context.Context, filter model.HistoryFilter) ([]model.RunRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.WorkoutID != "" {
		clauses = append(clauses, "workout_id = ?")
		args = append(args, filter.WorkoutID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, run_id, workout_id, workout_name, started_at, ended_at, status, steps_done, steps_total, active_seconds
		FROM runs
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunRecord
	for rows.Next() {
		var run model.RunRecord
		var startedAt, endedAt string
		if err := rows.Scan(&run.ID, &run.RunID, &run.WorkoutID, &run.WorkoutName, &startedAt, &endedAt,
			&run.Status, &run.StepsDone, &run.StepsTotal, &run.ActiveSeconds); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(runs) > filter.Last {
		runs = runs[len(runs)-filter.Last:]
	}
	return runs, nil
}

// LastRun returns the most recent run of a workout.
func (s *Store) LastRun(ctx context.Context, workoutID string) (model.RunRecord, bool, error) {
	runs, err := s.ListRuns(ctx, model.HistoryFilter{WorkoutID: workoutID, Last: 1})
	if err != nil {
		return model.RunRecord{}, false, err
	}
	if len(runs) == 0 {
		return model.RunRecord{}, false, nil
	}
	return runs[0], true, nil
}
