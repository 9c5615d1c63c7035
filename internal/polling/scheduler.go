package polling

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	inspection "inspection-cloud/internal/inspection/domain"
	"inspection-cloud/internal/observability/metrics"
	prediction "inspection-cloud/internal/prediction/domain"
)

// DefaultInterval is how often sensors are polled when not configured.
const DefaultInterval = 900 * time.Second

// stopTimeout bounds how long Stop waits for the loop to exit.
const stopTimeout = 5 * time.Second

// Poller scores one inspection per poll and enumerates eligible ones.
type Poller interface {
	PollableInspections(ctx context.Context) ([]inspection.Inspection, error)
	PollInspection(ctx context.Context, item inspection.Inspection) (*prediction.Assessment, error)
}

// Scheduler runs recurring sensor poll cycles in a background goroutine.
// Lifecycle is stopped -> running -> stopped; Start and Stop are idempotent.
type Scheduler struct {
	poller Poller
	logger *log.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    sync.WaitGroup
}

// NewScheduler constructs a scheduler.
func NewScheduler(poller Poller, logger *log.Logger) (*Scheduler, error) {
	if poller == nil {
		return nil, errors.New("polling: nil poller")
	}
	if logger == nil {
		return nil, errors.New("polling: nil logger")
	}
	return &Scheduler{poller: poller, logger: logger}, nil
}

// Start launches the poll loop. A non-positive interval falls back to the
// default. Calling Start on a running scheduler logs a warning and no-ops.
func (s *Scheduler) Start(interval time.Duration) {
	if s == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Printf("polling: scheduler already running, start ignored")
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	metrics.SetSchedulerRunning(true)

	stop := s.stop
	s.done.Add(1)
	go s.loop(interval, stop)

	s.logger.Printf("polling: scheduler started interval=%s", interval)
}

// Stop signals the loop to exit and waits up to stopTimeout for it. Calling
// Stop on a stopped scheduler logs a warning and no-ops.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.logger.Printf("polling: scheduler not running, stop ignored")
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.done.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		s.logger.Printf("polling: scheduler stopped")
	case <-time.After(stopTimeout):
		s.logger.Printf("polling: scheduler stop timed out after %s, loop abandoned", stopTimeout)
	}
	metrics.SetSchedulerRunning(false)
}

// IsRunning reports the lifecycle state.
func (s *Scheduler) IsRunning() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(interval time.Duration, stop <-chan struct{}) {
	defer s.done.Done()

	for {
		s.RunCycle(context.Background())

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}

// RunCycle polls every in-progress inspection once. A failure on one
// inspection is logged and never aborts the rest of the cycle.
func (s *Scheduler) RunCycle(ctx context.Context) {
	if s == nil {
		return
	}
	started := time.Now()

	items, err := s.poller.PollableInspections(ctx)
	if err != nil {
		s.logger.Printf("polling: cycle failed listing inspections: %v", err)
		metrics.ObservePollCycle(err, time.Since(started))
		return
	}

	s.logger.Printf("polling: cycle started inspections=%d", len(items))
	for _, item := range items {
		_, err := s.poller.PollInspection(ctx, item)
		metrics.ObservePollInspection(err)
		if err != nil {
			s.logger.Printf("polling: inspection %d failed: %v", item.ID, err)
			continue
		}
	}

	metrics.ObservePollCycle(nil, time.Since(started))
	s.logger.Printf("polling: cycle completed inspections=%d elapsed=%s", len(items), time.Since(started))
}
