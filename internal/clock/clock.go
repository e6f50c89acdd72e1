// Package clock implements the replay timeline clock.
//
// SampleClock converts free-running wall-clock readings into a logical
// "elapsed milliseconds since start" position, supporting pause/resume and
// arbitrary seeks. Elapsed values are always clamped to [0, duration], so
// the timeline never runs past the end of a recording; reaching the end
// keeps the clock running until an explicit Stop.
package clock

import "time"

// SampleClock tracks logical elapsed time against an injectable wall
// clock. The zero duration clock clamps every reading to 0, which is how
// an empty recording reports "nothing to play".
//
// Not safe for concurrent use; the recorder and replay engine are
// tick-driven and single-threaded by contract.
type SampleClock struct {
	now func() time.Time

	running       bool
	paused        bool
	start         time.Time // wall time corresponding to elapsed 0
	pausedElapsed int64     // captured elapsed ms while paused
	durationMs    int64
}

// New creates a stopped clock reading the system wall clock.
func New() *SampleClock {
	return NewWithNow(time.Now)
}

// NewWithNow creates a stopped clock with a caller-supplied time source.
// Tests inject a deterministic source here.
func NewWithNow(now func() time.Time) *SampleClock {
	return &SampleClock{now: now}
}

// SetDuration sets the timeline length. Negative values clamp to 0.
func (c *SampleClock) SetDuration(ms int64) {
	if ms < 0 {
		ms = 0
	}
	c.durationMs = ms
}

// DurationMs returns the timeline length.
func (c *SampleClock) DurationMs() int64 {
	return c.durationMs
}

// Start begins the timeline at elapsed 0, clearing any paused state.
func (c *SampleClock) Start() {
	c.running = true
	c.paused = false
	c.start = c.now()
	c.pausedElapsed = 0
}

// Stop halts the timeline. The next Start begins again at 0.
func (c *SampleClock) Stop() {
	c.running = false
	c.paused = false
	c.pausedElapsed = 0
}

// Pause freezes elapsed time at its current value. No-op unless running
// and not already paused.
func (c *SampleClock) Pause() {
	if !c.running || c.paused {
		return
	}
	c.pausedElapsed = c.ElapsedMs()
	c.paused = true
}

// Resume continues from the paused position. No-op unless running and
// paused.
func (c *SampleClock) Resume() {
	if !c.running || !c.paused {
		return
	}
	c.start = c.now().Add(-time.Duration(c.pausedElapsed) * time.Millisecond)
	c.paused = false
}

// Seek moves elapsed time to targetMs, clamped to [0, duration]. Works
// both paused and unpaused; no-op while stopped.
func (c *SampleClock) Seek(targetMs int64) {
	if !c.running {
		return
	}
	target := c.clamp(targetMs)
	if c.paused {
		c.pausedElapsed = target
		return
	}
	c.start = c.now().Add(-time.Duration(target) * time.Millisecond)
}

// ElapsedMs returns the current timeline position: 0 while stopped, the
// frozen position while paused, otherwise wall time since start, always
// clamped to [0, duration].
func (c *SampleClock) ElapsedMs() int64 {
	if !c.running {
		return 0
	}
	if c.paused {
		return c.clamp(c.pausedElapsed)
	}
	return c.clamp(c.now().Sub(c.start).Milliseconds())
}

// Running reports whether the clock has been started and not stopped.
// A clock that has reached the end of the timeline is still running.
func (c *SampleClock) Running() bool {
	return c.running
}

// Paused reports whether the clock is paused.
func (c *SampleClock) Paused() bool {
	return c.paused
}

// Finished reports whether a running clock has reached the end of the
// timeline. Distinct from stopped: callers poll this to detect
// completion, then decide whether to Stop.
func (c *SampleClock) Finished() bool {
	return c.running && c.ElapsedMs() >= c.durationMs
}

func (c *SampleClock) clamp(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	if ms > c.durationMs {
		return c.durationMs
	}
	return ms
}
