package bot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(max int, window time.Duration) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(max, window)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, defaultMaxCommands, rl.max)
	assert.Equal(t, defaultWindow, rl.window)
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl, _ := newTestLimiter(3, time.Minute)
	for i := range 3 {
		require.True(t, rl.Allow("user-1"), "command %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("user-1"), "command beyond limit should be denied")
	assert.True(t, rl.Allow("user-2"), "different user should not be affected")
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Minute)
	require.True(t, rl.Allow("user-1"))
	clock.advance(30 * time.Second)
	require.True(t, rl.Allow("user-1"))
	assert.False(t, rl.Allow("user-1"))

	clock.advance(31 * time.Second)
	assert.True(t, rl.Allow("user-1"), "first command left the window")
	assert.False(t, rl.Allow("user-1"))
}

func TestRateLimiterSweep(t *testing.T) {
	rl, clock := newTestLimiter(2, time.Minute)
	rl.Allow("idle")
	clock.advance(45 * time.Second)
	rl.Allow("active")
	clock.advance(30 * time.Second)

	assert.Equal(t, 1, rl.Sweep())
	assert.NotContains(t, rl.requests, "idle")
	assert.Contains(t, rl.requests, "active")
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(defaultMaxCommands, time.Hour)
	var wg sync.WaitGroup
	allowed := make([]int, 10)

	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			for range defaultMaxCommands + 2 {
				if rl.Allow(userID) {
					allowed[i]++
				}
			}
		}()
	}
	wg.Wait()

	for i, count := range allowed {
		assert.Equal(t, defaultMaxCommands, count, "user-%d should have exactly %d allowed commands", i, defaultMaxCommands)
	}
}
