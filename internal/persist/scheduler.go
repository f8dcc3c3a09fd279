package persist

import (
	"sync"
	"time"
)

// Scheduler coalesces bursts of saves into single debounced flushes. It
// keeps one pending timer per slice key; scheduling on a key with a
// pending timer cancels and replaces it, so only the last call within
// the debounce interval takes effect.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	pending map[string]Timer
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{clock: clock, pending: make(map[string]Timer)}
}

// Schedule runs fn after delay, superseding any pending task for key.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		prev.Stop()
	}
	var timer Timer
	timer = s.clock.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.pending[key] == timer {
			delete(s.pending, key)
		}
		s.mu.Unlock()
		fn()
	})
	s.pending[key] = timer
	s.mu.Unlock()
}

// Cancel drops the pending task for key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	if prev, ok := s.pending[key]; ok {
		prev.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()
}

// Stop cancels every pending task.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for key, t := range s.pending {
		t.Stop()
		delete(s.pending, key)
	}
	s.mu.Unlock()
}
