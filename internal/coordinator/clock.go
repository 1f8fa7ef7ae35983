package coordinator

import "sync/atomic"

// Clock hands out monotonically increasing sequence numbers for queued
// events. Sequence numbers order the session journal and make replay
// deterministic.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock starting at sequence 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt returns a clock whose next sequence is seq. Used when
// resuming a session from a journal.
func NewClockAt(seq int64) *Clock {
	c := &Clock{}
	if seq > 1 {
		c.seq.Store(seq - 1)
	}
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number, 0 before the first.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
