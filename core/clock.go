package core

import (
	"sync"
	"time"
)

// LedgerClock turns a wall clock into the ledger's non-decreasing time source.
// A reading never goes below the previous one, even if the wall clock steps
// backwards.
type LedgerClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewLedgerClock wraps now. Nil means time.Now.
func NewLedgerClock(now func() time.Time) *LedgerClock {
	if now == nil {
		now = time.Now
	}
	return &LedgerClock{now: now}
}

// Tick returns the current ledger time in unix seconds.
func (c *LedgerClock) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.now().Unix()
	if ts < c.last {
		ts = c.last
	}
	c.last = ts
	return ts
}

// Observe raises the floor to ts. It is used to resume from persisted state.
func (c *LedgerClock) Observe(ts int64) {
	c.mu.Lock()
	if ts > c.last {
		c.last = ts
	}
	c.mu.Unlock()
}

// Last returns the most recent reading.
func (c *LedgerClock) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// SetSource replaces the wall clock without lowering the floor.
func (c *LedgerClock) SetSource(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
