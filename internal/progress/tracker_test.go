package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shelfscan/shelfscan/internal/catalog"
)

type stubSink struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

func (s *stubSink) Record(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return s.err
}

func (s *stubSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestTrackerCountsEveryTaskOnce(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	tracker := NewTracker(6, zap.NewNop(), sink)

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.TaskDone(context.Background(), "utah", catalog.Available, 10*time.Millisecond)
		}()
	}
	wg.Wait()

	completed, total := tracker.Snapshot()
	require.Equal(t, int64(6), completed)
	require.Equal(t, int64(6), total)
	require.Len(t, sink.Events(), 6)
}

func TestTrackerEventsCarryRunMetadata(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	tracker := NewTracker(2, zap.NewNop(), sink)
	require.NotEqual(t, uuid.Nil, tracker.RunID())

	tracker.TaskDone(context.Background(), "hawaii", catalog.NotFound, time.Second)

	events := sink.Events()
	require.Len(t, events, 1)
	require.Equal(t, tracker.RunID(), events[0].RunID)
	require.Equal(t, int64(1), events[0].Completed)
	require.Equal(t, int64(2), events[0].Total)
	require.Equal(t, "hawaii", events[0].Catalog)
	require.Equal(t, catalog.NotFound, events[0].Availability)
}

func TestTrackerSinkFailureDoesNotStopCounting(t *testing.T) {
	t.Parallel()

	failing := &stubSink{err: errors.New("sink down")}
	tracker := NewTracker(3, zap.NewNop(), failing)

	for range 3 {
		tracker.TaskDone(context.Background(), "utah", catalog.Owned, 0)
	}

	completed, _ := tracker.Snapshot()
	require.Equal(t, int64(3), completed)
}

func TestTrackerCloseClosesSinks(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	tracker := NewTracker(0, zap.NewNop(), sink)
	require.NoError(t, tracker.Close(context.Background()))
	require.True(t, sink.closed)
}

func TestNilTrackerIsSafe(t *testing.T) {
	t.Parallel()

	var tracker *Tracker
	tracker.TaskDone(context.Background(), "utah", catalog.Unknown, 0)
	completed, total := tracker.Snapshot()
	require.Zero(t, completed)
	require.Zero(t, total)
	require.NoError(t, tracker.Close(context.Background()))
}
