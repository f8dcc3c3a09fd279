package persist

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancelable pending callback.
type Timer interface {
	// Stop cancels the timer; it reports false when the callback has
	// already fired or been stopped.
	Stop() bool
}

// Clock abstracts timer creation so tests can drive debounce deadlines
// with virtual time.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

type realTimer struct{ t *time.Timer }

func (rt realTimer) Stop() bool { return rt.t.Stop() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

// RealClock returns the wall-clock implementation.
func RealClock() Clock { return realClock{} }

// ManualClock is a deterministic clock for tests. Advance moves virtual
// time forward and fires due callbacks synchronously in deadline order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func (mt *manualTimer) Stop() bool {
	mt.clock.mu.Lock()
	defer mt.clock.mu.Unlock()
	if mt.fired || mt.stopped {
		return false
	}
	mt.stopped = true
	return true
}

func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(0, 0)}
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	mt := &manualTimer{clock: c, deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, mt)
	return mt
}

// Advance moves the clock forward by d, firing every timer whose
// deadline has passed. Callbacks run outside the clock lock so they may
// schedule new timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	due := make([]*manualTimer, 0)
	rest := c.timers[:0]
	for _, mt := range c.timers {
		if !mt.stopped && !mt.fired && !mt.deadline.After(now) {
			mt.fired = true
			due = append(due, mt)
		} else if !mt.stopped && !mt.fired {
			rest = append(rest, mt)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, mt := range due {
		mt.fn()
	}
}
