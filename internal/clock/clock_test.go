package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/retrace-io/retrace/internal/testutil"
)

func newTestClock(durationMs int64) (*SampleClock, *testutil.FakeClock) {
	fake := testutil.NewFakeClock()
	c := NewWithNow(fake.Now)
	c.SetDuration(durationMs)
	return c, fake
}

func TestSampleClock_StoppedReportsZero(t *testing.T) {
	c, fake := newTestClock(10_000)

	assert.False(t, c.Running())
	assert.Equal(t, int64(0), c.ElapsedMs())

	fake.AdvanceMs(5000)
	assert.Equal(t, int64(0), c.ElapsedMs(), "stopped clock ignores wall time")
}

func TestSampleClock_StartTracksWallTime(t *testing.T) {
	c, fake := newTestClock(10_000)

	c.Start()
	assert.True(t, c.Running())
	assert.Equal(t, int64(0), c.ElapsedMs())

	fake.AdvanceMs(1000)
	assert.Equal(t, int64(1000), c.ElapsedMs())

	fake.AdvanceMs(234)
	assert.Equal(t, int64(1234), c.ElapsedMs())
}

func TestSampleClock_ElapsedClampsAtDuration(t *testing.T) {
	c, fake := newTestClock(2000)

	c.Start()
	fake.AdvanceMs(5000)

	assert.Equal(t, int64(2000), c.ElapsedMs())
	assert.True(t, c.Finished())
	assert.True(t, c.Running(), "finished is not stopped")
}

func TestSampleClock_PauseFreezesElapsed(t *testing.T) {
	c, fake := newTestClock(10_000)

	c.Start()
	fake.AdvanceMs(1000)
	c.Pause()
	assert.True(t, c.Paused())

	fake.AdvanceMs(3000)
	assert.Equal(t, int64(1000), c.ElapsedMs(), "paused elapsed must not advance")
}

func TestSampleClock_PauseResumeConservesTime(t *testing.T) {
	c, fake := newTestClock(10_000)

	c.Start()
	fake.AdvanceMs(1500)

	// Immediate pause/resume leaves elapsed unchanged.
	c.Pause()
	c.Resume()
	assert.Equal(t, int64(1500), c.ElapsedMs())

	// Wall time passing while paused is counted exactly zero times.
	c.Pause()
	fake.AdvanceMs(9999)
	c.Resume()
	assert.Equal(t, int64(1500), c.ElapsedMs())

	fake.AdvanceMs(500)
	assert.Equal(t, int64(2000), c.ElapsedMs(), "no jump across a pause/resume pair")
}

func TestSampleClock_PauseResumeNoOps(t *testing.T) {
	c, fake := newTestClock(10_000)

	// Pause/Resume before start are no-ops.
	c.Pause()
	assert.False(t, c.Paused())
	c.Resume()
	assert.False(t, c.Running())

	c.Start()
	fake.AdvanceMs(100)

	// Resume while not paused is a no-op.
	c.Resume()
	assert.Equal(t, int64(100), c.ElapsedMs())

	// Double pause keeps the first captured position.
	c.Pause()
	fake.AdvanceMs(50)
	c.Pause()
	assert.Equal(t, int64(100), c.ElapsedMs())
}

func TestSampleClock_SeekClamps(t *testing.T) {
	c, _ := newTestClock(5000)
	c.Start()

	c.Seek(-100)
	assert.Equal(t, int64(0), c.ElapsedMs())

	c.Seek(6000)
	assert.Equal(t, int64(5000), c.ElapsedMs())
	assert.True(t, c.Finished())

	c.Seek(2500)
	assert.Equal(t, int64(2500), c.ElapsedMs())
	assert.False(t, c.Finished())
}

func TestSampleClock_SeekWhilePaused(t *testing.T) {
	c, fake := newTestClock(5000)

	c.Start()
	fake.AdvanceMs(1000)
	c.Pause()

	c.Seek(3000)
	assert.Equal(t, int64(3000), c.ElapsedMs())
	assert.True(t, c.Paused())

	// Resuming continues from the seek target.
	c.Resume()
	fake.AdvanceMs(500)
	assert.Equal(t, int64(3500), c.ElapsedMs())
}

func TestSampleClock_SeekWhileStoppedIsNoOp(t *testing.T) {
	c, _ := newTestClock(5000)

	c.Seek(2000)
	assert.Equal(t, int64(0), c.ElapsedMs())
}

func TestSampleClock_SeekThenRunContinues(t *testing.T) {
	c, fake := newTestClock(5000)
	c.Start()

	c.Seek(2000)
	fake.AdvanceMs(300)
	assert.Equal(t, int64(2300), c.ElapsedMs())
}

func TestSampleClock_StopResetsTimeline(t *testing.T) {
	c, fake := newTestClock(5000)

	c.Start()
	fake.AdvanceMs(1000)
	c.Pause()
	c.Stop()

	assert.False(t, c.Running())
	assert.False(t, c.Paused())
	assert.Equal(t, int64(0), c.ElapsedMs())

	// Next start begins at 0 again.
	c.Start()
	assert.Equal(t, int64(0), c.ElapsedMs())
	fake.AdvanceMs(10)
	assert.Equal(t, int64(10), c.ElapsedMs())
}

func TestSampleClock_ZeroDuration(t *testing.T) {
	c, fake := newTestClock(0)

	c.Start()
	fake.AdvanceMs(1000)

	assert.Equal(t, int64(0), c.ElapsedMs(), "empty timeline clamps to 0")
	assert.True(t, c.Finished())
}

func TestSampleClock_SetDurationNegativeClamps(t *testing.T) {
	c := NewWithNow(func() time.Time { return time.Unix(0, 0) })
	c.SetDuration(-50)
	assert.Equal(t, int64(0), c.DurationMs())
}
