// Package session drives a rotation.Pipeline from a frame source: one
// frame is fetched and fully processed before the next, playback can be
// paused and resumed, and cancelling the context stops the loop between
// frames.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/banshee-data/rotation.report/internal/monitoring"
	"github.com/banshee-data/rotation.report/internal/rotation"
	"github.com/banshee-data/rotation.report/internal/timeutil"
	"github.com/google/uuid"
)

var logf = monitoring.Scoped("session")

// minFrameDelay mirrors the 1ms floor of a keyboard poll between frames.
const minFrameDelay = time.Millisecond

// FrameSource yields frames in order and returns io.EOF when exhausted.
type FrameSource interface {
	Next(ctx context.Context) (rotation.Frame, error)
}

// Options configures a Runner.
type Options struct {
	RunID     string         // Generated when empty
	FrameRate float64        // Source frames per second, used for pacing
	Pace      bool           // Sleep between frames to match FrameRate
	Clock     timeutil.Clock // Defaults to timeutil.RealClock
}

// Summary describes a finished (or stopped) run.
type Summary struct {
	RunID          string    `json:"run_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	FramesRead     int       `json:"frames_read"`
	FramesTracked  int       `json:"frames_tracked"`
	FramesReused   int       `json:"frames_reused"`
	FramesNoMotion int       `json:"frames_no_motion"`
	Rotations      int       `json:"rotations"`
	Stopped        bool      `json:"stopped"` // Cancelled before the source was exhausted
}

// Runner owns the frame loop for one pipeline.
type Runner struct {
	source   FrameSource
	pipeline *rotation.Pipeline
	opts     Options

	mu       sync.Mutex
	paused   bool
	resumeCh chan struct{}
	summary  Summary
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// NewRunner creates a runner. The pipeline must not be shared with another runner.
func NewRunner(src FrameSource, p *rotation.Pipeline, opts Options) *Runner {
	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	return &Runner{
		source:   src,
		pipeline: p,
		opts:     opts,
		summary:  Summary{RunID: opts.RunID},
	}
}

// RunID returns the identifier of this run.
func (r *Runner) RunID() string {
	return r.opts.RunID
}

// Pipeline returns the pipeline driven by this runner.
func (r *Runner) Pipeline() *rotation.Pipeline {
	return r.pipeline
}

// Pause halts frame acquisition after the current frame completes.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.paused {
		r.paused = true
		r.resumeCh = make(chan struct{})
		logf("run %s paused", r.opts.RunID)
	}
}

// Resume continues frame acquisition with the tracking state as left.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused {
		r.paused = false
		close(r.resumeCh)
		logf("run %s resumed", r.opts.RunID)
	}
}

// TogglePause flips the paused state and returns the new value.
func (r *Runner) TogglePause() bool {
	r.mu.Lock()
	paused := r.paused
	r.mu.Unlock()
	if paused {
		r.Resume()
		return false
	}
	r.Pause()
	return true
}

// Paused reports whether acquisition is paused.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Summary returns a copy of the counters accumulated so far.
func (r *Runner) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

func (r *Runner) waitWhilePaused(ctx context.Context) error {
	for {
		r.mu.Lock()
		if !r.paused {
			r.mu.Unlock()
			return nil
		}
		ch := r.resumeCh
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Run processes frames until the source is exhausted or ctx is cancelled.
// Cancellation is a normal stop and returns a nil error with Stopped set.
// Source and pipeline errors end the run and are returned.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	clock := r.opts.Clock
	var frameDelay time.Duration
	if r.opts.Pace && r.opts.FrameRate > 0 {
		frameDelay = time.Duration(float64(time.Second) / r.opts.FrameRate)
	}

	r.mu.Lock()
	r.summary.StartedAt = clock.Now()
	r.mu.Unlock()

	finish := func(stopped bool) Summary {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.summary.FinishedAt = clock.Now()
		r.summary.Stopped = stopped
		r.summary.Rotations = r.pipeline.State().RotationCount()
		return r.summary
	}

	for {
		if ctx.Err() != nil {
			return finish(true), nil
		}
		if err := r.waitWhilePaused(ctx); err != nil {
			return finish(true), nil
		}

		start := clock.Now()
		frame, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			s := finish(false)
			logf("run %s complete: %d frames, %d rotations", s.RunID, s.FramesRead, s.Rotations)
			return s, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return finish(true), nil
			}
			return finish(false), fmt.Errorf("read frame: %w", err)
		}

		res, err := r.pipeline.ProcessFrame(frame)
		if err != nil {
			return finish(false), fmt.Errorf("process frame: %w", err)
		}
		r.count(res)

		if frameDelay > 0 {
			delay := frameDelay - clock.Since(start)
			if delay < minFrameDelay {
				delay = minFrameDelay
			}
			clock.Sleep(delay)
		}
	}
}

func (r *Runner) count(res rotation.FrameResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.FramesRead++
	switch res.Outcome {
	case rotation.OutcomeTracked:
		r.summary.FramesTracked++
	case rotation.OutcomeReused:
		r.summary.FramesReused++
	case rotation.OutcomeNoMotion:
		r.summary.FramesNoMotion++
	}
	r.summary.Rotations = res.RotationCount
}
