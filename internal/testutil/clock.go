// Package testutil provides deterministic time sources for tests that
// exercise wall-clock-sensitive behavior, like the guide redraw
// throttle. Production code never imports it.
package testutil

import "time"

// FakeClock is a manually driven time source. Its Now method plugs in
// wherever a component takes a `func() time.Time`; time moves only when
// the test says so, plus an optional fixed step per reading for code
// paths that must always see the interval elapsed.
//
// Not safe for concurrent use; tests drive it from one goroutine.
type FakeClock struct {
	now  time.Time
	step time.Duration
}

// NewFakeClock starts a clock at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// AutoAdvancing makes every Now reading move the clock forward by step,
// so throttles built on it are always ready.
func (c *FakeClock) AutoAdvancing(step time.Duration) *FakeClock {
	c.step = step
	return c
}

// Now returns the current instant, then applies the auto-advance step.
func (c *FakeClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
