package world

import (
	"sync"
	"time"
)

// Clock is the simulated wall clock. Simulation time is independent of real
// time and only moves when an admin explicitly advances it; every timestamp
// written to the store comes from here.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock creates a clock frozen at the given instant.
func NewClock(start time.Time) *Clock {
	return &Clock{
		now: start,
	}
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.now
}

// Advance moves the clock forward by d and returns the new time. Negative
// durations are ignored so the clock never runs backwards.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d > 0 {
		c.now = c.now.Add(d)
	}

	return c.now
}

// Set replaces the current simulated time. Used by snapshot import.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = t
}
