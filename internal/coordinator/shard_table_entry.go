package coordinator

import (
	"github.com/dreamware/shardtable/internal/ratelimit"
	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

// ScalingMode selects which of a source's two rate limiters an acquire or
// release call targets.
type ScalingMode int

const (
	ScaleUp ScalingMode = iota
	ScaleDown
)

// ShardTableEntry is the per-source bucket of a ShardTable: the shards
// belonging to one SourceUid, plus the two scaling rate limiters attached
// to that source.
type ShardTableEntry struct {
	shardEntries         map[shardid.ShardId]*shard.ShardEntry
	scalingUpRateLimiter *ratelimit.RateLimiter
	scalingDownRateLimiter *ratelimit.RateLimiter
}

// newShardTableEntry returns an empty entry with default-settings rate
// limiters.
func newShardTableEntry() *ShardTableEntry {
	return &ShardTableEntry{
		shardEntries:           make(map[shardid.ShardId]*shard.ShardEntry),
		scalingUpRateLimiter:   ratelimit.New(ratelimit.ScalingUpSettings),
		scalingDownRateLimiter: ratelimit.New(ratelimit.ScalingDownSettings),
	}
}

// shardTableEntryFromShards builds an entry from a slice of shards,
// keeping only those in the Open or Closed state. It is used when seeding
// from a slow or partial source of truth (the metastore), where an
// Unavailable or otherwise-stated shard should not be trusted yet.
func shardTableEntryFromShards(shards []*shard.Shard) *ShardTableEntry {
	entry := newShardTableEntry()
	for _, s := range shards {
		if s.ShardState != shard.Open && s.ShardState != shard.Closed {
			continue
		}
		entry.shardEntries[s.ShardId] = shard.NewShardEntry(s)
	}
	return entry
}

// isEmpty reports whether the entry currently tracks no shards.
func (e *ShardTableEntry) isEmpty() bool {
	return len(e.shardEntries) == 0
}

// rateLimiterFor returns the limiter for the given scaling mode.
func (e *ShardTableEntry) rateLimiterFor(mode ScalingMode) *ratelimit.RateLimiter {
	if mode == ScaleUp {
		return e.scalingUpRateLimiter
	}
	return e.scalingDownRateLimiter
}
