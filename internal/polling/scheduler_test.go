package polling

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	inspection "inspection-cloud/internal/inspection/domain"
	prediction "inspection-cloud/internal/prediction/domain"
)

type stubPoller struct {
	mu      sync.Mutex
	items   []inspection.Inspection
	listErr error
	failID  int64
	polled  []int64
	cycles  int
}

func (s *stubPoller) PollableInspections(_ context.Context) ([]inspection.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	return s.items, s.listErr
}

func (s *stubPoller) PollInspection(_ context.Context, item inspection.Inspection) (*prediction.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == s.failID {
		return nil, errors.New("scoring exploded")
	}
	s.polled = append(s.polled, item.ID)
	return &prediction.Assessment{}, nil
}

func (s *stubPoller) polledIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, len(s.polled))
	copy(ids, s.polled)
	return ids
}

func (s *stubPoller) cycleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestScheduler(t *testing.T, poller Poller) *Scheduler {
	t.Helper()
	scheduler, err := NewScheduler(poller, testLogger())
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return scheduler
}

func TestRunCycleFailureIsolation(t *testing.T) {
	poller := &stubPoller{
		items: []inspection.Inspection{
			{ID: 1, Status: inspection.StatusInProgress},
			{ID: 2, Status: inspection.StatusInProgress},
			{ID: 3, Status: inspection.StatusInProgress},
		},
		failID: 2,
	}
	scheduler := newTestScheduler(t, poller)

	scheduler.RunCycle(context.Background())

	ids := poller.polledIDs()
	if len(ids) != 2 {
		t.Fatalf("polled %d inspections, want 2 despite one failure", len(ids))
	}
	if ids[0] != 1 || ids[1] != 3 {
		t.Fatalf("polled %v, want [1 3]", ids)
	}
}

func TestRunCycleListFailureIsNotFatal(t *testing.T) {
	poller := &stubPoller{listErr: errors.New("db down")}
	scheduler := newTestScheduler(t, poller)

	scheduler.RunCycle(context.Background())
	scheduler.RunCycle(context.Background())

	if poller.cycleCount() != 2 {
		t.Fatalf("cycle count = %d, want 2", poller.cycleCount())
	}
}

func TestStartStopLifecycle(t *testing.T) {
	poller := &stubPoller{}
	scheduler := newTestScheduler(t, poller)

	if scheduler.IsRunning() {
		t.Fatalf("scheduler running before start")
	}

	scheduler.Start(10 * time.Millisecond)
	if !scheduler.IsRunning() {
		t.Fatalf("scheduler not running after start")
	}

	deadline := time.Now().Add(time.Second)
	for poller.cycleCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("loop never reached a second cycle")
		}
		time.Sleep(time.Millisecond)
	}

	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Fatalf("scheduler still running after stop")
	}

	settled := poller.cycleCount()
	time.Sleep(50 * time.Millisecond)
	if poller.cycleCount() > settled+1 {
		t.Fatalf("loop kept cycling after stop")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	poller := &stubPoller{}
	scheduler := newTestScheduler(t, poller)

	scheduler.Start(time.Hour)
	scheduler.Start(time.Hour)

	// One loop means exactly one immediate cycle before the hour-long sleep.
	deadline := time.Now().Add(time.Second)
	for poller.cycleCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatalf("loop never ran a cycle")
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if poller.cycleCount() != 1 {
		t.Fatalf("cycle count = %d, want 1 active loop", poller.cycleCount())
	}

	scheduler.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	scheduler := newTestScheduler(t, &stubPoller{})

	scheduler.Stop()
	scheduler.Stop()

	scheduler.Start(time.Hour)
	scheduler.Stop()
	scheduler.Stop()

	if scheduler.IsRunning() {
		t.Fatalf("scheduler running after stops")
	}
}

func TestRestartAfterStop(t *testing.T) {
	poller := &stubPoller{}
	scheduler := newTestScheduler(t, poller)

	scheduler.Start(time.Hour)
	scheduler.Stop()
	scheduler.Start(time.Hour)
	if !scheduler.IsRunning() {
		t.Fatalf("scheduler not running after restart")
	}
	scheduler.Stop()
}
