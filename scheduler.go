package gauge

import (
	"slices"
	"sync"
	"time"
)

// Scheduler delivers per-frame callbacks, like a browser's animation frame
// queue. Each scheduled callback runs at most once, on the next frame.
type Scheduler interface {
	// Schedule queues fn for the next frame and returns a function that
	// removes it again. Cancel is idempotent and safe to call after fn ran.
	Schedule(fn func(now time.Time)) (cancel func())
}

// callbackQueue is the pending set shared by the schedulers.
type callbackQueue struct {
	next    uint64
	pending map[uint64]func(time.Time)
}

func (q *callbackQueue) add(fn func(time.Time)) uint64 {
	if q.pending == nil {
		q.pending = make(map[uint64]func(time.Time))
	}
	id := q.next
	q.next++
	q.pending[id] = fn
	return id
}

// drain removes and returns all pending callbacks in scheduling order.
func (q *callbackQueue) drain() []func(time.Time) {
	if len(q.pending) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(time.Time), len(ids))
	for i, id := range ids {
		fns[i] = q.pending[id]
	}
	clear(q.pending)
	return fns
}

// ManualScheduler runs callbacks when the host calls Step, for example from
// an ebiten Update or a test.
type ManualScheduler struct {
	mu sync.Mutex
	q  callbackQueue
}

// NewManualScheduler returns an empty ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler.
func (s *ManualScheduler) Schedule(fn func(now time.Time)) func() {
	s.mu.Lock()
	id := s.q.add(fn)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.q.pending, id)
		s.mu.Unlock()
	}
}

// Step runs every callback queued before the call. Callbacks scheduled
// while stepping run on the next Step. It returns the number of callbacks
// run.
func (s *ManualScheduler) Step(now time.Time) int {
	s.mu.Lock()
	fns := s.q.drain()
	s.mu.Unlock()
	for _, fn := range fns {
		fn(now)
	}
	return len(fns)
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.q.pending)
}

// DefaultFrameInterval is the TickerScheduler interval used when none is
// given: 60 frames per second.
const DefaultFrameInterval = time.Second / 60

// TickerScheduler runs callbacks from a time.Ticker goroutine. The
// goroutine starts on the first Schedule and exits as soon as a tick leaves
// nothing pending, so an idle gauge holds no goroutine.
type TickerScheduler struct {
	interval time.Duration

	mu      sync.Mutex
	q       callbackQueue
	running bool
	closed  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewTickerScheduler returns a scheduler ticking every interval.
// A non-positive interval selects DefaultFrameInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerScheduler{
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Schedule implements Scheduler. After Close it is a no-op.
func (s *TickerScheduler) Schedule(fn func(now time.Time)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.q.add(fn)
	if !s.running {
		s.running = true
		s.wg.Add(1)
		go s.loop()
	}
	return func() {
		s.mu.Lock()
		delete(s.q.pending, id)
		s.mu.Unlock()
	}
}

func (s *TickerScheduler) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			fns := s.q.drain()
			s.mu.Unlock()

			for _, fn := range fns {
				fn(now)
			}

			s.mu.Lock()
			if len(s.q.pending) == 0 || s.closed {
				s.running = false
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}
}

// Pending returns the number of queued callbacks.
func (s *TickerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.q.pending)
}

// Running reports whether the ticker goroutine is alive.
func (s *TickerScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close drops pending callbacks and waits for the ticker goroutine to exit.
// It must not be called from a scheduled callback.
func (s *TickerScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clear(s.q.pending)
	close(s.stop)
	s.mu.Unlock()
	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}
