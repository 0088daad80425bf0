package internal

import (
	"context"
	"sync"
)

// Gate is a one-shot readiness signal. Any number of goroutines may wait on
// it; they are all released together the first time Open is called, and
// every later Wait returns immediately.
type Gate struct {
	once sync.Once
	ch   chan struct{}
}

// NewGate creates a gate that has not been opened yet.
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Open releases all current and future waiters. Calls after the first are no-ops.
// Returns true only for the call that actually opened the gate.
func (g *Gate) Open() bool {
	opened := false
	g.once.Do(func() {
		close(g.ch)
		opened = true
	})
	return opened
}

// IsOpen reports whether Open has been called.
func (g *Gate) IsOpen() bool {
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the gate opens.
func (g *Gate) Done() <-chan struct{} {
	return g.ch
}

// Wait blocks until the gate opens or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
