package live

import (
	"sync"

	"github.com/banshee-data/rotation.report/internal/rotation"
)

// StateTracker mirrors pipeline state for readers on other goroutines. It
// must be registered as an observer of the pipeline whose state it wraps, so
// snapshots are taken on the frame loop.
type StateTracker struct {
	runID string
	state *rotation.TrackingState

	mu      sync.RWMutex
	snap    rotation.Snapshot
	last    *rotation.FrameResult
	samples []rotation.Sample
}

// Status is the JSON body of the state endpoint.
type Status struct {
	RunID     string                `json:"run_id"`
	State     rotation.Snapshot     `json:"state"`
	LastFrame *rotation.FrameResult `json:"last_frame,omitempty"`
	Paused    bool                  `json:"paused"`
}

// NewStateTracker wraps state, which is only read from ObserveFrame.
func NewStateTracker(runID string, state *rotation.TrackingState) *StateTracker {
	return &StateTracker{runID: runID, state: state, snap: state.Snapshot()}
}

// ObserveFrame records the latest result and sample.
func (t *StateTracker) ObserveFrame(res rotation.FrameResult) {
	snap := t.state.Snapshot()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = snap
	t.last = &res
	if res.Sample != nil {
		t.samples = append(t.samples, *res.Sample)
	}
}

// Status returns the most recent snapshot.
func (t *StateTracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st := Status{RunID: t.runID, State: t.snap}
	if t.last != nil {
		last := *t.last
		st.LastFrame = &last
	}
	return st
}

// Samples returns a copy of the samples observed so far.
func (t *StateTracker) Samples() []rotation.Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]rotation.Sample, len(t.samples))
	copy(out, t.samples)
	return out
}
