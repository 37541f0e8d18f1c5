package db

import (
	"fmt"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// InsertSamples writes samples for a run in one transaction. Re-inserting a
// frame index replaces the earlier row.
func (db *DB) InsertSamples(runID string, samples []rotation.Sample) (err error) {
	if len(samples) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO samples (
			run_id, frame_index, x, y, bearing_degrees, rotation_count, elapsed_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err = stmt.Exec(runID, s.FrameIndex, s.X, s.Y, s.BearingDegrees, s.RotationCount, s.ElapsedSeconds); err != nil {
			return fmt.Errorf("failed to insert sample for frame %d: %w", s.FrameIndex, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit samples: %w", err)
	}
	return nil
}

// Samples returns the samples of a run ordered by frame index.
func (db *DB) Samples(runID string) ([]rotation.Sample, error) {
	rows, err := db.Query(`
		SELECT frame_index, x, y, bearing_degrees, rotation_count, elapsed_seconds
		FROM samples
		WHERE run_id = ?
		ORDER BY frame_index ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples := []rotation.Sample{}
	for rows.Next() {
		var s rotation.Sample
		if err := rows.Scan(&s.FrameIndex, &s.X, &s.Y, &s.BearingDegrees, &s.RotationCount, &s.ElapsedSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

// SampleCount returns how many samples are stored for a run.
func (db *DB) SampleCount(runID string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM samples WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// ElapsedSeconds returns the elapsed time of a run's last sample, or 0 when
// it has none.
func (db *DB) ElapsedSeconds(runID string) (float64, error) {
	var elapsed float64
	err := db.QueryRow(`SELECT COALESCE(MAX(elapsed_seconds), 0) FROM samples WHERE run_id = ?`, runID).Scan(&elapsed)
	if err != nil {
		return 0, fmt.Errorf("failed to read elapsed time: %w", err)
	}
	return elapsed, nil
}

// Recorder buffers samples from a live pipeline and flushes them in batches.
// It implements rotation.Observer.
type Recorder struct {
	db      *DB
	runID   string
	batch   int
	pending []rotation.Sample
	err     error
}

// NewRecorder returns a recorder that flushes every batch samples.
func NewRecorder(db *DB, runID string, batch int) *Recorder {
	if batch <= 0 {
		batch = 256
	}
	return &Recorder{db: db, runID: runID, batch: batch}
}

// ObserveFrame queues the frame's sample, if any.
func (r *Recorder) ObserveFrame(res rotation.FrameResult) {
	if res.Sample == nil || r.err != nil {
		return
	}
	r.pending = append(r.pending, *res.Sample)
	if len(r.pending) >= r.batch {
		r.err = r.Flush()
	}
}

// Flush writes queued samples. It returns the first write error seen.
func (r *Recorder) Flush() error {
	if r.err != nil {
		return r.err
	}
	if err := r.db.InsertSamples(r.runID, r.pending); err != nil {
		r.err = err
		return err
	}
	r.pending = r.pending[:0]
	return nil
}
