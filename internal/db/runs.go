package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned when a run ID has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one pass of the tracker over a frame source.
type Run struct {
	RunID      string     `json:"run_id"`
	Source     string     `json:"source"`
	ParamsJSON string     `json:"params_json"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	FramesRead int        `json:"frames_read"`
	Rotations  int        `json:"rotations"`
	Stopped    bool       `json:"stopped"`
}

// InsertRun records the start of a run.
func (db *DB) InsertRun(run *Run) error {
	if run.RunID == "" {
		return fmt.Errorf("run_id is required")
	}
	params := run.ParamsJSON
	if params == "" {
		params = "{}"
	}
	_, err := db.Exec(`
		INSERT INTO runs (run_id, source, params_json, started_unix_nanos)
		VALUES (?, ?, ?, ?)`,
		run.RunID, run.Source, params, run.StartedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final counters of a run.
func (db *DB) FinishRun(runID string, finishedAt time.Time, framesRead, rotations int, stopped bool) error {
	stoppedInt := 0
	if stopped {
		stoppedInt = 1
	}
	res, err := db.Exec(`
		UPDATE runs
		SET finished_unix_nanos = ?, frames_read = ?, rotations = ?, stopped = ?
		WHERE run_id = ?`,
		finishedAt.UnixNano(), framesRead, rotations, stoppedInt, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

const runColumns = `run_id, source, params_json, started_unix_nanos, finished_unix_nanos, frames_read, rotations, stopped`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		started    int64
		finished   sql.NullInt64
		stoppedInt int
	)
	if err := row.Scan(
		&run.RunID,
		&run.Source,
		&run.ParamsJSON,
		&started,
		&finished,
		&run.FramesRead,
		&run.Rotations,
		&stoppedInt,
	); err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(0, started)
	if finished.Valid {
		t := time.Unix(0, finished.Int64)
		run.FinishedAt = &t
	}
	run.Stopped = stoppedInt == 1
	return &run, nil
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(runID string) (*Run, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_unix_nanos DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// DeleteRun removes a run and, through the foreign key, its samples.
func (db *DB) DeleteRun(runID string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}
