package core

import (
	"sync/atomic"
	"time"
)

// IncreasingClock hands out wall-clock milliseconds that are strictly
// increasing across calls, even when several calls land in the same
// millisecond. Safe for concurrent use.
type IncreasingClock struct {
	last atomic.Int64
	now  func() time.Time
}

// NewIncreasingClock returns a clock backed by time.Now.
func NewIncreasingClock() *IncreasingClock {
	return &IncreasingClock{now: time.Now}
}

// NewIncreasingClockFunc returns a clock backed by now. Used by tests.
func NewIncreasingClockFunc(now func() time.Time) *IncreasingClock {
	return &IncreasingClock{now: now}
}

// Next returns a timestamp greater than every timestamp returned or
// observed before.
func (c *IncreasingClock) Next() int64 {
	for {
		last := c.last.Load()
		n := c.now().UnixMilli()
		if n <= last {
			n = last + 1
		}
		if c.last.CompareAndSwap(last, n) {
			return n
		}
	}
}

// Observe records an externally supplied timestamp so that later calls to
// Next stay ahead of it.
func (c *IncreasingClock) Observe(ts int64) {
	for {
		last := c.last.Load()
		if ts <= last || c.last.CompareAndSwap(last, ts) {
			return
		}
	}
}

// Current returns the last timestamp handed out or observed.
func (c *IncreasingClock) Current() int64 {
	return c.last.Load()
}
