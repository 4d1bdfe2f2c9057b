// Package coordinator implements the control plane's shard table, the
// in-memory, authoritative projection of which shards exist for every
// (index, source) pair, which ingester nodes are expected to host each
// one, and how fast each source is currently allowed to scale.
//
// # Overview
//
// The shard table is the piece of state a control-plane actor consults
// and mutates on every event it processes: a metastore snapshot at
// startup, a gossiped shard-status batch, an admin request to close or
// delete shards, a scaling decision. It never performs I/O itself, never
// owns a network connection, and never persists anything; it is a pure
// in-memory index over events fed to it by its caller.
//
// # Architecture
//
// The table maintains two indices over the same (node, source, shard)
// triples:
//
//	┌───────────────────────────────────────────────────────────┐
//	│                       ShardTable                           │
//	├───────────────────────────────────────────────────────────┤
//	│                                                             │
//	│  ┌─────────────────────────────────────────────────────┐  │
//	│  │  tableEntries (primary index)                        │  │
//	│  │    SourceUid -> ShardTableEntry                      │  │
//	│  │      shardEntries: ShardId -> *ShardEntry            │  │
//	│  │      scalingUpRateLimiter:   *ratelimit.RateLimiter  │  │
//	│  │      scalingDownRateLimiter: *ratelimit.RateLimiter  │  │
//	│  └─────────────────────────────────────────────────────┘  │
//	│                                                             │
//	│  ┌─────────────────────────────────────────────────────┐  │
//	│  │  ingesterShards (derived index)                      │  │
//	│  │    NodeId -> SourceUid -> []ShardId (sorted)         │  │
//	│  └─────────────────────────────────────────────────────┘  │
//	│                                                             │
//	└───────────────────────────────────────────────────────────┘
//
// tableEntries is the primary index: it owns the ShardEntry values and is
// the only index consulted for per-source reads (ListShards, UpdateShards,
// CloseShards, ...). ingesterShards is a derived index holding only
// identifiers, used to answer "what does this node host" without scanning
// every source. Every mutating method updates both within the same call
// so the two never observably disagree between calls.
//
// # Core Components
//
// ShardTable: the table itself
//   - Holds both indices and an attached logger
//   - Exposes read operations that always return defensive copies
//   - Exposes mutating operations that keep both indices in lockstep
//   - Runs checkInvariant after every mutation, under go test, to catch
//     index drift immediately rather than downstream
//
// ShardTableEntry: the per-source bucket
//   - shardEntries: the shards currently known for one source
//   - scalingUpRateLimiter / scalingDownRateLimiter: independent token
//     buckets gating how often the source may open or close shards
//
// LeaderHealthTracker: consecutive-failure-counted leader availability,
// feeding the unavailableLeaders argument to FindOpenShards
//   - Tracks per-node failure counts independently of the shard table
//   - Marks a node unavailable after a configurable failure threshold
//   - Returns a snapshot copy, never a live reference, to callers
//
// # Ownership Model
//
// ShardTable carries no internal lock. It is designed to be owned
// exclusively by one actor processing events serially, as demonstrated by
// cmd/controlplane; concurrent callers must serialize through that actor
// rather than relying on the table to do it. This mirrors how a single
// control-plane goroutine in a real cluster would apply metastore
// snapshots, newly opened shards, gossiped status updates, and admin
// deletions in arrival order: every mutation is a complete transition
// from one consistent state to the next, with nothing else running
// between reads and writes inside a single method.
//
// LeaderHealthTracker is the one exception: it keeps its own RWMutex,
// since health probes and the routing path that reads availability are
// expected to run concurrently with each other and with the owning
// actor's event loop.
//
// # Consistency Checking
//
// checkInvariant walks both indices and panics on any disagreement: a
// shard present in one index but not the other, a source referenced by
// the derived index but absent from the primary one, or a shard keyed
// under the wrong id. It runs only under testing.Testing(), so production
// builds never pay for an O(shards x replicas) walk after every call; the
// cost is worth it in tests, where catching a broken invariant at the
// call that caused it is far cheaper than debugging it three calls later.
//
// # Scaling Permits
//
// Each ShardTableEntry owns two independent token buckets (see
// internal/ratelimit) gating how often its source may scale up, opening
// more shards, or scale down, closing shards. AcquireScalingPermits and
// ReleaseScalingPermits are the table's only scaling-related operations:
// it grants or denies permits and nothing more. Deciding when scaling
// should happen, and by how much, is entirely the caller's concern.
//
// # Failure Scenarios
//
// Source added twice: AddSource logs and overwrites rather than
// refusing, since the caller's contract already promised the source was
// unknown. If the prior entry was non-empty, its shards stay orphaned in
// ingesterShards, and the checkInvariant call at the end of AddSource
// itself panics under go test; outside go test the check is skipped and
// the orphaned entries remain.
//
// Newly opened shards for an unknown source: InsertNewlyOpenedShards
// creates the missing entry on the fly and logs a warning, since this is
// reachable under ordinary eventual-consistency races rather than being a
// programmer error.
//
// Shard id mismatch: InsertNewlyOpenedShards panics if a shard's own
// (IndexUid, SourceId) does not match the sourceUid argument it was
// called with, since that can only happen if the caller violated the
// source-of-truth contract the whole table relies on.
//
// # Usage Example
//
//	table := coordinator.NewShardTable(coordinator.WithLogger(logger))
//	table.InitializeSourceShards(sourceUid, seedShards)
//
//	stats := table.UpdateShards(sourceUid, gossipedInfos)
//	if stats.NumOpenShards == 0 {
//	    if granted, ok := table.AcquireScalingPermits(sourceUid, coordinator.ScaleUp, 1); ok && granted {
//	        // open a new shard, then InsertNewlyOpenedShards it
//	    }
//	}
//
// # See Also
//
// Related packages:
//   - internal/shard: the Shard/ShardEntry/Info types this package indexes
//   - internal/ratelimit: the token bucket behind scaling permits
//   - internal/gossip: the batch shape UpdateShards consumes
//   - internal/metastore: the snapshot loader that drives InitializeSourceShards
package coordinator
