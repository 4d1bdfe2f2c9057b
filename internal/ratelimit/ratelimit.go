package ratelimit

import "time"

// Rate expresses a permit budget as a count over a window, e.g. "5 permits
// per 60 seconds".
type Rate struct {
	Count  uint64
	Window time.Duration
}

// Settings configures a RateLimiter: how many permits it can hold at most,
// the steady-state rate it refills at, and how often refills are applied.
type Settings struct {
	BurstLimit   uint64
	RateLimit    Rate
	RefillPeriod time.Duration
}

// ScalingUpSettings is the fixed policy for opening new shards: burst 5,
// 5 permits per 60s, refilled every 12s. Scale up cautiously but
// repeatably.
var ScalingUpSettings = Settings{
	BurstLimit:   5,
	RateLimit:    Rate{Count: 5, Window: 60 * time.Second},
	RefillPeriod: 12 * time.Second,
}

// ScalingDownSettings is the fixed policy for closing shards: burst 1,
// 1 permit per 60s, refilled every 60s. Scale down very conservatively.
var ScalingDownSettings = Settings{
	BurstLimit:   1,
	RateLimit:    Rate{Count: 1, Window: 60 * time.Second},
	RefillPeriod: 60 * time.Second,
}

// RateLimiter is a non-blocking token bucket. Acquire never waits: it
// either deducts the requested permits immediately or fails. Failure to
// acquire means "defer the decision", not "queue the caller".
type RateLimiter struct {
	settings         Settings
	refillIncrement  uint64
	availablePermits uint64
	lastRefillAt     time.Time
	clock            Clock
}

// New creates a RateLimiter from settings, starting with a full bucket.
func New(settings Settings) *RateLimiter {
	return NewWithClock(settings, SystemClock)
}

// NewWithClock creates a RateLimiter using an explicit Clock, for tests.
func NewWithClock(settings Settings, clock Clock) *RateLimiter {
	increment := settings.RateLimit.Count * uint64(settings.RefillPeriod) / uint64(settings.RateLimit.Window)
	if increment > settings.BurstLimit {
		increment = settings.BurstLimit
	}
	return &RateLimiter{
		settings:         settings,
		refillIncrement:  increment,
		availablePermits: settings.BurstLimit,
		lastRefillAt:     clock.Now(),
		clock:            clock,
	}
}

// refill tops up the bucket based on elapsed wall-clock time since the
// last refill, capped at the burst limit. Only whole refill periods are
// credited, and lastRefillAt advances by exactly those periods, so a
// fraction of a period is preserved across calls instead of being
// rounded away.
func (r *RateLimiter) refill() {
	now := r.clock.Now()
	elapsed := now.Sub(r.lastRefillAt)
	if elapsed < r.settings.RefillPeriod {
		return
	}
	periods := uint64(elapsed / r.settings.RefillPeriod)
	r.availablePermits += periods * r.refillIncrement
	if r.availablePermits > r.settings.BurstLimit {
		r.availablePermits = r.settings.BurstLimit
	}
	r.lastRefillAt = r.lastRefillAt.Add(time.Duration(periods) * r.settings.RefillPeriod)
}

// Acquire deducts n permits and returns true if the bucket currently holds
// at least n; otherwise it leaves the bucket untouched and returns false.
// It never blocks.
func (r *RateLimiter) Acquire(n uint64) bool {
	r.refill()
	if r.availablePermits < n {
		return false
	}
	r.availablePermits -= n
	return true
}

// Release returns n permits to the bucket, saturating at the burst limit.
// Used to undo an Acquire for a scaling action that was subsequently
// cancelled.
func (r *RateLimiter) Release(n uint64) {
	r.availablePermits += n
	if r.availablePermits > r.settings.BurstLimit {
		r.availablePermits = r.settings.BurstLimit
	}
}

// AvailablePermits reports the current token count after applying any
// pending refill. It exists for observability and tests.
func (r *RateLimiter) AvailablePermits() uint64 {
	r.refill()
	return r.availablePermits
}
