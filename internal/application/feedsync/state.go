package feedsync

import (
	"sync/atomic"
	"time"

	"github.com/storefront/backend/internal/domain/feedsync"
)

// RunState holds the single run guard and counters of a sync engine.
// All fields are atomics, so Snapshot never blocks a running sync; a
// snapshot taken mid-run may mix counters from neighbouring items.
type RunState struct {
	running  atomic.Bool
	lastSync atomic.Pointer[time.Time]

	total   atomic.Int64
	created atomic.Int64
	updated atomic.Int64
	errors  atomic.Int64
}

// NewRunState creates an idle state with no completed run
func NewRunState() *RunState {
	return &RunState{}
}

// TryStart claims the run guard. It returns false if a run is in flight.
func (s *RunState) TryStart() bool {
	return s.running.CompareAndSwap(false, true)
}

// Release frees the run guard
func (s *RunState) Release() {
	s.running.Store(false)
}

// IsRunning reports whether a run holds the guard
func (s *RunState) IsRunning() bool {
	return s.running.Load()
}

// ResetCounters zeroes the counters at the start of a run
func (s *RunState) ResetCounters() {
	s.total.Store(0)
	s.created.Store(0)
	s.updated.Store(0)
	s.errors.Store(0)
}

// RecordOutcome counts one reconciled product
func (s *RunState) RecordOutcome(outcome Outcome) {
	s.total.Add(1)
	switch outcome {
	case OutcomeCreated:
		s.created.Add(1)
	case OutcomeUpdated:
		s.updated.Add(1)
	}
}

// RecordError counts one failed pair, item or run
func (s *RunState) RecordError() {
	s.errors.Add(1)
}

// MarkCompleted stamps the completion time of a run
func (s *RunState) MarkCompleted(at time.Time) {
	s.lastSync.Store(&at)
}

// Snapshot returns the current status
func (s *RunState) Snapshot() feedsync.SyncStatus {
	status := feedsync.SyncStatus{
		IsRunning: s.running.Load(),
		Stats: feedsync.Stats{
			TotalProducts:   s.total.Load(),
			NewProducts:     s.created.Load(),
			UpdatedProducts: s.updated.Load(),
			Errors:          s.errors.Load(),
		},
	}
	if last := s.lastSync.Load(); last != nil {
		t := *last
		status.LastSyncTime = &t
	}
	return status
}
