package orchestrator

import (
	"sync/atomic"
	"testing"
	"time"
)

// manualScheduler swaps the timer hook for one that never fires, so
// entries stay pending until cancelled.
func manualScheduler() *Scheduler {
	s := NewScheduler()
	s.afterFunc = func(d time.Duration, fn func()) *time.Timer {
		t := time.NewTimer(time.Hour)
		t.Stop()
		return t
	}
	return s
}

func TestSchedulerRunsWork(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	done := make(chan struct{})
	s.Schedule("job", time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled work never ran")
	}
	if s.Pending("job") {
		t.Error("key should be cleared after the work ran")
	}
}

func TestSchedulerReplaceSameKey(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var first, second atomic.Int32
	s.Schedule("job", 50*time.Millisecond, func() { first.Add(1) })
	s.Schedule("job", time.Millisecond, func() { second.Add(1) })

	time.Sleep(100 * time.Millisecond)
	if got := first.Load(); got != 0 {
		t.Errorf("replaced work ran %d times, want 0", got)
	}
	if got := second.Load(); got != 1 {
		t.Errorf("replacement ran %d times, want 1", got)
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var ran atomic.Int32
	s.Schedule("job", 10*time.Millisecond, func() { ran.Add(1) })
	if !s.Pending("job") {
		t.Fatal("job should be pending")
	}
	s.Cancel("job")
	if s.Pending("job") {
		t.Error("job should no longer be pending")
	}
	s.Cancel("missing")

	time.Sleep(50 * time.Millisecond)
	if got := ran.Load(); got != 0 {
		t.Errorf("cancelled work ran %d times", got)
	}
}

func TestSchedulerPendingKeys(t *testing.T) {
	s := manualScheduler()
	defer s.Close()

	s.Schedule("a", time.Minute, func() {})
	s.Schedule("b", time.Minute, func() {})

	keys := s.PendingKeys()
	if len(keys) != 2 {
		t.Fatalf("got %d pending keys, want 2", len(keys))
	}
}

func TestSchedulerCloseWaitsForRunningWork(t *testing.T) {
	s := NewScheduler()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	s.Schedule("job", time.Millisecond, func() {
		close(started)
		<-release
		finished.Store(true)
	})
	<-started

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a callback was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close never returned after the callback finished")
	}
	if !finished.Load() {
		t.Error("callback should have run to completion before Close returned")
	}
}

func TestSchedulerCloseRejectsNewWork(t *testing.T) {
	s := NewScheduler()

	var ran atomic.Int32
	s.Schedule("job", time.Minute, func() { ran.Add(1) })
	s.Close()

	if s.Pending("job") {
		t.Error("Close should cancel pending work")
	}
	s.Schedule("late", time.Millisecond, func() { ran.Add(1) })
	if s.Pending("late") {
		t.Error("Schedule after Close should be a no-op")
	}

	time.Sleep(20 * time.Millisecond)
	if got := ran.Load(); got != 0 {
		t.Errorf("work ran %d times after Close", got)
	}
}
