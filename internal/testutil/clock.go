package testutil

import (
	"sync"
	"time"
)

// DefaultStart is the wall-clock time a FixedClock starts at when none is given.
var DefaultStart = time.Date(2024, time.March, 1, 14, 35, 2, 0, time.UTC)

// FixedClock provides a deterministic wall clock for tests.
//
// Every call to Now returns the current time and then advances it by step.
// A zero step returns the same instant forever. This makes delivered_at
// stamps predictable in tests and golden files.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFixedClock creates a clock starting at start that advances by step per call.
// A zero start uses DefaultStart.
func NewFixedClock(start time.Time, step time.Duration) *FixedClock {
	if start.IsZero() {
		start = DefaultStart
	}
	return &FixedClock{now: start, step: step}
}

// Now returns the current time and advances the clock by step.
//
// Implements engine.Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the time the next Now call will return, without advancing.
func (c *FixedClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
