package realtime

import (
	"sync"
	"time"
)

// Coalescer collapses a burst of triggers into a single callback per
// window. Correctness never depends on it: each refresh recomputes from
// current store state, coalescing only avoids redundant recomputes.
type Coalescer struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

// NewCoalescer builds a coalescer invoking fn at most once per window.
// A non-positive window degrades to invoking fn on every trigger.
func NewCoalescer(window time.Duration, fn func()) *Coalescer {
	return &Coalescer{window: window, fn: fn}
}

// Trigger requests a callback. Triggers arriving while one is pending are
// absorbed into it.
func (c *Coalescer) Trigger() {
	if c.window <= 0 {
		c.fn()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(c.window, func() {
		c.mu.Lock()
		c.timer = nil
		stopped := c.stopped
		c.mu.Unlock()
		if !stopped {
			c.fn()
		}
	})
}

// Stop cancels any pending callback and ignores further triggers.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
