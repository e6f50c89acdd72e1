// Package testutil provides deterministic test doubles shared across
// packages.
package testutil

import (
	"sync"
	"time"
)

// FakeClock is a controllable time source for tests.
//
// Inject FakeClock.Now into clock.NewWithNow so tests advance time
// explicitly instead of sleeping. The same scenario then produces
// identical elapsed values on every run.
//
// Thread-safety: all methods are safe for concurrent use via an internal
// mutex, although the components under test are single-threaded.
type FakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

// NewFakeClock creates a fake clock at an arbitrary fixed epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{cur: time.Unix(1_700_000_000, 0)}
}

// Now returns the current fake time. Pass this method value as the time
// source.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

// Advance moves the fake time forward by d. Negative d moves it backward,
// which no test should need but is not prevented.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

// AdvanceMs moves the fake time forward by ms milliseconds.
func (c *FakeClock) AdvanceMs(ms int64) {
	c.Advance(time.Duration(ms) * time.Millisecond)
}
