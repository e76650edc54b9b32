package input

import (
	"sync"
	"time"
)

// Clock supplies event timestamps and delays. Timestamps are offsets on a
// monotonic uptime clock, matching how the input pipeline orders events.
type Clock interface {
	Now() time.Duration
	Sleep(d time.Duration)
}

var bootTime = time.Now()

type systemClock struct{}

// SystemClock returns a Clock measuring time since process start.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Duration    { return time.Since(bootTime) }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// FakeClock is a Clock whose time only moves when Sleep or Advance is called.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	sleeps []time.Duration
}

// NewFakeClock returns a FakeClock starting at start.
func NewFakeClock(start time.Duration) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d and records the call.
func (c *FakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	c.sleeps = append(c.sleeps, d)
}

// Advance moves the clock forward without recording a sleep.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// Sleeps returns every duration passed to Sleep, in order.
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}
