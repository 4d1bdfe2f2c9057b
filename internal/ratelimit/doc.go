// Package ratelimit implements a non-blocking token bucket used to gate
// the control plane's scaling-up and scaling-down decisions per source.
//
// The limiter never waits and never calls sleep: acquiring a permit is a
// synchronous yes/no, matching torua's own preference for synchronous,
// lock-held-briefly operations in internal/coordinator's ShardRegistry.
// The only externally observable dependency is wall-clock time, abstracted
// behind the Clock interface below so tests can advance time deterministically
// instead of sleeping real seconds, the same seam torua's health monitor
// would need had it made time.Now() swappable.
package ratelimit
