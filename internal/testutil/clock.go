package testutil

import (
	"sync"
	"time"
)

// TickingClock produces deterministic, strictly increasing timestamps for
// tests that assert on ledger entries or golden snapshots.
//
// Each call to Now advances the clock by one millisecond from a fixed epoch,
// so repeated test runs produce identical timestamps regardless of wall time.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type TickingClock struct {
	mu    sync.Mutex
	epoch time.Time
	ticks int64
}

// NewTickingClock creates a clock starting at the given epoch.
//
// The first call to Now returns epoch + 1ms.
func NewTickingClock(epoch time.Time) *TickingClock {
	return &TickingClock{epoch: epoch}
}

// Now advances the clock one millisecond and returns the new instant.
func (c *TickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.epoch.Add(time.Duration(c.ticks) * time.Millisecond)
}

// Reset rewinds the clock to its epoch for test reuse.
func (c *TickingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
