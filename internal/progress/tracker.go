// Package progress tracks completed/total lookup counts and fans completion
// events out to registered sinks. It is a side channel: sinks are purely
// informational and never affect the run's correctness.
package progress

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelfscan/shelfscan/internal/catalog"
)

// Event captures one completed lookup.
type Event struct {
	RunID        uuid.UUID
	TS           time.Time
	Completed    int64
	Total        int64
	Catalog      string
	Availability catalog.Availability
	Dur          time.Duration
}

// Sink consumes completion events. Implementations may be invoked
// concurrently and must not block the run; failures are logged and ignored.
type Sink interface {
	Record(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Tracker maintains the monotonically increasing completed count for one
// scan run. The count is incremented exactly once per task and reaches the
// total exactly when the pool has drained. A nil Tracker is valid and
// discards everything.
type Tracker struct {
	runID     uuid.UUID
	total     int64
	completed atomic.Int64
	sinks     []Sink
	logger    *zap.Logger
}

// NewTracker builds a Tracker for a run of total tasks.
func NewTracker(total int, logger *zap.Logger, sinks ...Sink) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		runID:  uuid.New(),
		total:  int64(total),
		sinks:  append([]Sink(nil), sinks...),
		logger: logger,
	}
}

// RunID identifies this scan run on every emitted event.
func (t *Tracker) RunID() uuid.UUID {
	if t == nil {
		return uuid.Nil
	}
	return t.runID
}

// TaskDone records one completed task (success or downgraded-to-Unknown)
// and notifies every sink.
func (t *Tracker) TaskDone(ctx context.Context, cat string, avail catalog.Availability, dur time.Duration) {
	if t == nil {
		return
	}
	completed := t.completed.Add(1)
	evt := Event{
		RunID:        t.runID,
		TS:           time.Now().UTC(),
		Completed:    completed,
		Total:        t.total,
		Catalog:      cat,
		Availability: avail,
		Dur:          dur,
	}
	for _, sink := range t.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, evt); err != nil {
			t.logger.Warn("progress sink record failed", zap.Error(err))
		}
	}
}

// Snapshot returns the current completed count and the run total.
func (t *Tracker) Snapshot() (completed, total int64) {
	if t == nil {
		return 0, 0
	}
	return t.completed.Load(), t.total
}

// Close closes every sink.
func (t *Tracker) Close(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var firstErr error
	for _, sink := range t.sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
