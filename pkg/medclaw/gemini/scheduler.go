// scheduler.go serializes every API call through a single FIFO queue so the
// process as a whole respects the API's requests-per-minute quota. All
// logical callers (chat sessions, one-shot generations) share one queue and
// therefore one rate budget: a burst from one caller delays all others.
package gemini

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute matches the free-tier Gemini quota.
const DefaultRequestsPerMinute = 15

// IntervalForRPM converts a requests-per-minute quota to the minimum
// interval between dispatch starts (15 rpm → 4s).
func IntervalForRPM(rpm int) time.Duration {
	if rpm <= 0 {
		rpm = DefaultRequestsPerMinute
	}
	return time.Minute / time.Duration(rpm)
}

// task is one queued unit of work plus the channel its result settles on.
// Ownership transfers to the scheduler on enqueue and reverts to the caller
// once the result is delivered.
type task struct {
	ctx  context.Context
	run  func(context.Context) error
	done chan error
}

// Scheduler is a single-flight, strict-FIFO, minimum-interval request queue.
// At most one task runs at a time; the start times of two consecutive
// dispatches are never closer than the configured interval. Errors are
// always settled to the caller, never swallowed or retried here.
type Scheduler struct {
	limiter *rate.Limiter
	logger  *slog.Logger

	mu       sync.Mutex
	queue    []*task
	draining bool
}

// NewScheduler builds a scheduler with the given minimum interval between
// dispatch starts. An interval of zero disables pacing (useful in tests).
func NewScheduler(minInterval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Scheduler{
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "scheduler"),
	}
}

// Do enqueues fn and blocks until it has run and settled. Tasks run strictly
// in enqueue order. Once enqueued a task is not cancelled by the scheduler:
// a context already expired at dispatch settles with ctx.Err() without
// consuming rate budget, and fn itself decides how to honor ctx beyond that.
func (s *Scheduler) Do(ctx context.Context, fn func(context.Context) error) error {
	t := &task{ctx: ctx, run: fn, done: make(chan error, 1)}

	s.mu.Lock()
	s.queue = append(s.queue, t)
	depth := len(s.queue)
	start := !s.draining
	if start {
		s.draining = true
	}
	s.mu.Unlock()

	if depth > 1 {
		s.logger.Debug("request queued behind others", "depth", depth)
	}
	if start {
		go s.drain()
	}

	return <-t.done
}

// QueueDepth returns the number of tasks waiting or running.
func (s *Scheduler) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// drain pops and runs tasks until the queue empties. Only one drain loop
// runs at a time; s.draining is the reentrancy guard.
func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		t := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		// Gate the dispatch start on the rate budget. A failed wait (caller
		// context already expired) returns the reservation, so the next
		// task is not pushed back by a dispatch that never happened.
		if err := s.limiter.Wait(t.ctx); err != nil {
			t.done <- err
			continue
		}

		// Run to completion; a slow or failing task releases the loop to
		// the next task only once it settles.
		t.done <- t.run(t.ctx)
	}
}
