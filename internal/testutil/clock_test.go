package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_NowIsStable(t *testing.T) {
	c := NewFakeClock()
	assert.Equal(t, c.Now(), c.Now(), "time only moves when advanced")
}

func TestFakeClock_Advance(t *testing.T) {
	c := NewFakeClock()
	start := c.Now()

	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, start.Add(1500*time.Millisecond), c.Now())

	c.AdvanceMs(500)
	assert.Equal(t, start.Add(2*time.Second), c.Now())
}

func TestFakeClock_ConcurrentAdvance(t *testing.T) {
	c := NewFakeClock()
	start := c.Now()

	const goroutines = 50
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.AdvanceMs(10)
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(goroutines*10*time.Millisecond), c.Now())
}
