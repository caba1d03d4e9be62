// Package orchestrator composes the broker, bus, conversation manager,
// and task parser into the agent coordination facade.
package orchestrator

import (
	"sync"
	"time"
)

// Scheduler is an explicit delayed-work queue. Continuations that the
// conversation layer would otherwise chain through timers are queued
// here so pending work can be inspected, cancelled, and run
// deterministically in tests. Scheduling an already-pending key
// replaces the earlier entry.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	wg     sync.WaitGroup

	// afterFunc is swapped in tests to trigger work manually.
	afterFunc func(d time.Duration, fn func()) *time.Timer
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers:    make(map[string]*time.Timer),
		afterFunc: time.AfterFunc,
	}
}

// Schedule queues fn to run after delay. A pending entry under the
// same key is cancelled and replaced.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = s.afterFunc(delay, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.wg.Add(1)
		s.mu.Unlock()
		defer s.wg.Done()
		fn()
	})
}

// Cancel removes a pending entry. Unknown keys are a no-op.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Pending reports whether work is queued under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// PendingKeys returns all currently queued keys.
func (s *Scheduler) PendingKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.timers))
	for k := range s.timers {
		keys = append(keys, k)
	}
	return keys
}

// Close cancels all pending work, rejects new scheduling, and waits
// for callbacks already running. Callers can therefore tear down the
// resources those callbacks touch once Close returns.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
