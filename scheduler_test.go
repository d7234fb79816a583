package gauge

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()
	var order []int
	s.Schedule(func(time.Time) { order = append(order, 1) })
	cancel := s.Schedule(func(time.Time) { order = append(order, 2) })
	s.Schedule(func(time.Time) { order = append(order, 3) })

	cancel()
	cancel() // idempotent
	if got := s.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}

	if n := s.Step(time.Now()); n != 2 {
		t.Errorf("Step() ran %d callbacks, want 2", n)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("callback order = %v, want [1 3]", order)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() after Step = %d, want 0", s.Pending())
	}
}

func TestManualSchedulerRescheduleRunsNextStep(t *testing.T) {
	s := NewManualScheduler()
	runs := 0
	var fn func(time.Time)
	fn = func(time.Time) {
		runs++
		s.Schedule(fn)
	}
	s.Schedule(fn)

	s.Step(time.Now())
	if runs != 1 {
		t.Fatalf("runs = %d after one Step, want 1", runs)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 2s")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTickerSchedulerStopsWhenIdle(t *testing.T) {
	s := NewTickerScheduler(time.Millisecond)
	t.Cleanup(s.Close)

	var calls atomic.Int32
	s.Schedule(func(time.Time) { calls.Add(1) })

	waitFor(t, func() bool { return calls.Load() == 1 })
	waitFor(t, func() bool { return !s.Running() })
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}

	// A new callback restarts the goroutine.
	s.Schedule(func(time.Time) { calls.Add(1) })
	waitFor(t, func() bool { return calls.Load() == 2 })
}

func TestTickerSchedulerCancel(t *testing.T) {
	s := NewTickerScheduler(50 * time.Millisecond)
	t.Cleanup(s.Close)

	var called atomic.Bool
	cancel := s.Schedule(func(time.Time) { called.Store(true) })
	cancel()
	if s.Pending() != 0 {
		t.Fatalf("Pending() after cancel = %d, want 0", s.Pending())
	}
	waitFor(t, func() bool { return !s.Running() })
	if called.Load() {
		t.Error("cancelled callback ran")
	}
}

func TestTickerSchedulerClose(t *testing.T) {
	s := NewTickerScheduler(time.Hour)
	s.Schedule(func(time.Time) { t.Error("callback ran after Close") })
	s.Close()
	s.Close()

	if s.Running() || s.Pending() != 0 {
		t.Errorf("after Close: running=%v pending=%d", s.Running(), s.Pending())
	}
	s.Schedule(func(time.Time) { t.Error("callback scheduled after Close ran") })
	if s.Pending() != 0 {
		t.Error("Schedule after Close queued a callback")
	}
}
