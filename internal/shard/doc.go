// Package shard defines the authoritative shard record and the gossiped
// observation that augments it, the data model internal/coordinator's
// ShardTable indexes.
//
// # Overview
//
// A Shard is identified by where it lives in the logical namespace (an
// IndexUid and SourceId) and by its own id within that source. It never
// silently disappears when its state changes: Closed and Unavailable
// shards stay in the table until something explicitly deletes them.
// ShardEntry augments a Shard with the one piece of runtime telemetry the
// control plane tracks per shard, its last known ingestion rate, the way
// torua's shard.go augments its storage primitives with a thin status
// wrapper rather than inventing a parallel type hierarchy.
//
// # Architecture
//
//	┌─────────────────────────────────────────┐
//	│                 Shard                    │
//	├─────────────────────────────────────────┤
//	│  IndexUid, SourceId, ShardId  (identity) │
//	│  ShardState                   (lifecycle)│
//	│  LeaderId, FollowerIds        (placement)│
//	└─────────────────────────────────────────┘
//	                    │ embedded by
//	                    ▼
//	┌─────────────────────────────────────────┐
//	│               ShardEntry                 │
//	├─────────────────────────────────────────┤
//	│  *Shard                                  │
//	│  IngestionRateMiBPerSec       (telemetry)│
//	└─────────────────────────────────────────┘
//
// # Core Components
//
// ShardState: the four-value lifecycle enum
//   - Unspecified: produced by an external system and filtered on ingest
//   - Open: accepting writes, eligible for routing
//   - Closed: terminal, kept for bookkeeping until deleted
//   - Unavailable: leader unreachable; excluded from FindOpenShards
//
// Shard: identity, state, and placement
//   - IngesterNodes returns the deduplicated leader+followers set
//   - IsOpen / IsClosed are the two state checks callers need most
//   - SourceUid reconstructs the compound key from its own fields
//
// ShardEntry: a Shard plus runtime telemetry
//   - Embeds *Shard so callers read and write the underlying shard's
//     fields transparently, the closest idiomatic Go equivalent of the
//     Rust type's Deref/DerefMut onto its inner Shard
//   - Clone returns a deep-enough copy (fresh Shard value, fresh
//     FollowerIds slice) so a caller can never mutate the table's state
//     through a value it only meant to read
//
// Info: the gossip wire shape
//   - Carries only what an ingester can observe about a shard it hosts:
//     its id, its state, and its current ingestion rate
//   - Consumed in batches by ShardTable.UpdateShards
//
// # Field Reference
//
// Shard.ShardId:
//
//	Format: an opaque string, unique within (IndexUid, SourceId).
//	Example: "00000000000000000001"
//
// Shard.LeaderId / Shard.FollowerIds:
//
//	Format: NodeId strings identifying ingester processes.
//	Thread-Safety: a *Shard is not safe for concurrent mutation; callers
//	that need to share one across goroutines should hold a ShardEntry.Clone
//	instead of the table's own copy.
//
// # Usage Example
//
//	s := &shard.Shard{
//	    IndexUid:   "logs-2024:0",
//	    SourceId:   "ingest-v1",
//	    ShardId:    "1",
//	    ShardState: shard.Open,
//	    LeaderId:   "node-1",
//	}
//	entry := shard.NewShardEntry(s)
//	entry.IngestionRateMiBPerSec = 4
//
//	if entry.IsOpen() {
//	    for _, node := range entry.IngesterNodes() {
//	        // route writes to node
//	    }
//	}
//
// # See Also
//
// Related packages:
//   - internal/shardid: the newtypes (IndexUid, SourceId, NodeId, ShardId)
//     used throughout this package
//   - internal/coordinator: indexes Shard/ShardEntry values into a ShardTable
//   - internal/gossip: carries Info values between ingesters and the table
package shard
