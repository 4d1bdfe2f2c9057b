package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable Clock for deterministic rate-limiter tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiterStartsFull(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewWithClock(ScalingUpSettings, clock)
	assert.EqualValues(t, 5, limiter.AvailablePermits())
}

func TestAcquireDeductsAndDenies(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewWithClock(ScalingDownSettings, clock)

	require.True(t, limiter.Acquire(1))
	assert.EqualValues(t, 0, limiter.AvailablePermits())
	assert.False(t, limiter.Acquire(1))
}

func TestReleaseSaturatesAtBurst(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewWithClock(ScalingUpSettings, clock)

	limiter.Release(100)
	assert.EqualValues(t, 5, limiter.AvailablePermits())
}

func TestAcquireThenReleaseIsNoOp(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewWithClock(ScalingUpSettings, clock)

	before := limiter.AvailablePermits()
	require.True(t, limiter.Acquire(2))
	limiter.Release(2)
	assert.Equal(t, before, limiter.AvailablePermits())
}

func TestRefillHonorsPeriodAndBurst(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewWithClock(ScalingUpSettings, clock)

	for i := 0; i < 5; i++ {
		require.True(t, limiter.Acquire(1))
	}
	assert.False(t, limiter.Acquire(1))

	// One refill period (12s) adds exactly one permit back.
	clock.advance(12 * time.Second)
	assert.EqualValues(t, 1, limiter.AvailablePermits())

	// A much longer wait saturates at the burst limit, it never overshoots.
	clock.advance(10 * time.Minute)
	assert.EqualValues(t, 5, limiter.AvailablePermits())
}

func TestAcquireNeverBlocksBelowAvailable(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	limiter := NewWithClock(ScalingDownSettings, clock)

	// Within a window shorter than one refill period, a full bucket
	// acquires at most burst_limit times.
	successes := 0
	for i := 0; i < 3; i++ {
		if limiter.Acquire(1) {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}
