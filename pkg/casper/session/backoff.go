package session

import (
	"sync"
	"time"

	"github.com/BrandonKowalski/casper/pkg/casper/constants"
	"github.com/BrandonKowalski/casper/pkg/casper/internal"
)

// Default reconnection delays.
const (
	DefaultInitialDelay = constants.DefaultInitialBackoff
	DefaultMaxDelay     = constants.DefaultMaxBackoff
)

// Backoff throttles how often user activity may trigger a reconnect attempt.
// At most one timer is pending at a time. When it expires the delay doubles,
// capped at the maximum. Backoff never reconnects by itself; the next
// qualifying activity does.
type Backoff struct {
	mu      sync.Mutex
	clock   internal.Clock
	initial time.Duration
	max     time.Duration
	delay   time.Duration
	timer   internal.Timer
	gen     uint64
}

// NewBackoff creates a controller starting at initial and capped at max.
// Non-positive values fall back to the defaults.
func NewBackoff(clock internal.Clock, initial, max time.Duration) *Backoff {
	if clock == nil {
		clock = internal.RealClock()
	}
	initial, max = bounds(initial, max)
	return &Backoff{
		clock:   clock,
		initial: initial,
		max:     max,
		delay:   initial,
	}
}

func bounds(initial, limit time.Duration) (time.Duration, time.Duration) {
	if initial <= 0 {
		initial = DefaultInitialDelay
	}
	if limit <= 0 {
		limit = DefaultMaxDelay
	}
	return initial, max(limit, initial)
}

// SetBounds changes the initial and maximum delays. The current delay is
// moved into the new range; a pending timer keeps its old delay.
func (b *Backoff) SetBounds(initial, limit time.Duration) {
	initial, limit = bounds(initial, limit)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.initial = initial
	b.max = limit
	b.delay = min(max(b.delay, initial), limit)
}

// Schedule arms the throttle timer when a reconnect is warranted: the state
// is disconnected or pending, or there is no session. Returns true if a
// timer was armed, which is the caller's cue to attempt the reconnect.
// It is a no-op while a timer is already pending.
func (b *Backoff) Schedule(state State, hasSession bool) bool {
	if !state.NeedsReconnect() && hasSession {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		return false
	}

	b.gen++
	gen := b.gen
	b.timer = b.clock.AfterFunc(b.delay, func() { b.expire(gen) })
	return true
}

func (b *Backoff) expire(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen || b.timer == nil {
		return
	}
	b.delay = min(b.delay*2, b.max)
	b.timer = nil
}

// Delay returns the delay the next armed timer will use.
func (b *Backoff) Delay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.delay
}

// Pending reports whether a timer is outstanding.
func (b *Backoff) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.timer != nil
}

// Reset puts the delay back to its initial value. A pending timer is left alone.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = b.initial
}

// Stop cancels a pending timer without growing the delay.
func (b *Backoff) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
}
