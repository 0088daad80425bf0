package internal

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts the time operations the engine depends on so timers can
// be driven deterministically in tests.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine after d elapses.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the call. Returns false if it already fired or was stopped.
	Stop() bool
}

type realClock struct{}

// RealClock returns the Clock backed by package time.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// FakeClock is a deterministic Clock. Time stands still until Advance is
// called; AfterFunc callbacks then run synchronously in deadline order.
// Do not call Advance from within a callback.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	clock    *FakeClock
	deadline time.Time
	callback func()
	done     bool
}

// NewFakeClock returns a FakeClock set to initial.
func NewFakeClock(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := &fakeWaiter{clock: c, deadline: c.current.Add(d), callback: f}
	c.waiters = append(c.waiters, w)
	return w
}

// Advance moves time forward by d and fires every timer that came due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)

	var due []*fakeWaiter
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if w.done {
			continue
		}
		if !w.deadline.After(c.current) {
			w.done = true
			due = append(due, w)
			continue
		}
		remaining = append(remaining, w)
	}
	c.waiters = remaining
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, w := range due {
		w.callback()
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, w := range c.waiters {
		if !w.done {
			n++
		}
	}
	return n
}

func (w *fakeWaiter) Stop() bool {
	w.clock.mu.Lock()
	defer w.clock.mu.Unlock()

	if w.done {
		return false
	}
	w.done = true
	return true
}
