package shard

import (
	"github.com/dreamware/shardtable/internal/shardid"
)

// ShardState is the lifecycle state of a shard as tracked by the control
// plane. Unspecified covers any state produced by an external system
// (e.g. a transient metastore state) that the table is expected to filter
// out on ingest rather than represent.
type ShardState int

const (
	Unspecified ShardState = iota
	Open
	Closed
	Unavailable
)

func (s ShardState) String() string {
	switch s {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Unavailable:
		return "unavailable"
	default:
		return "unspecified"
	}
}

// Shard is the authoritative record of one shard: its location in the
// logical namespace, its lifecycle state, and the ingester nodes expected
// to host it.
//
// Shard values are returned to callers as defensive copies (see
// ShardEntry.Clone); a caller is free to read and mutate one it holds
// without affecting the table it was copied from.
//
// Thread-Safety: a *Shard is not itself safe for concurrent mutation.
// Code that needs to share one across goroutines should hold a cloned
// copy, not a reference obtained from inside a ShardTable.
//
// Example:
//
//	s := &Shard{
//	    IndexUid:   "logs-2024:0",
//	    SourceId:   "ingest-v1",
//	    ShardId:    "1",
//	    ShardState: Open,
//	    LeaderId:   "node-1",
//	    FollowerIds: []shardid.NodeId{"node-2"},
//	}
type Shard struct {
	// IndexUid identifies the index generation this shard belongs to.
	// Format: "<index_id>:<generation>". Example: "logs-2024:0".
	IndexUid shardid.IndexUid

	// SourceId identifies the data source within IndexUid that owns this
	// shard. Example: "ingest-v1".
	SourceId shardid.SourceId

	// ShardId identifies this shard within its source. Opaque string,
	// unique only within (IndexUid, SourceId). Example: "1".
	ShardId shardid.ShardId

	// ShardState is the shard's current lifecycle state. See ShardState
	// for the full set of values and their meaning.
	ShardState ShardState

	// LeaderId is the node currently responsible for accepting writes to
	// this shard. Always included by IngesterNodes, even if empty, since
	// an empty leader still occupies the leader slot.
	LeaderId shardid.NodeId

	// FollowerIds are the nodes replicating this shard's writes. May be
	// nil or empty for an unreplicated shard.
	FollowerIds []shardid.NodeId
}

// IngesterNodes returns the deduplicated set of nodes expected to host
// this shard: the leader plus every follower.
func (s *Shard) IngesterNodes() []shardid.NodeId {
	nodes := make([]shardid.NodeId, 0, 1+len(s.FollowerIds))
	seen := make(map[shardid.NodeId]struct{}, 1+len(s.FollowerIds))
	nodes = append(nodes, s.LeaderId)
	seen[s.LeaderId] = struct{}{}
	for _, follower := range s.FollowerIds {
		if _, ok := seen[follower]; ok {
			continue
		}
		seen[follower] = struct{}{}
		nodes = append(nodes, follower)
	}
	return nodes
}

// IsOpen reports whether the shard currently accepts writes.
func (s *Shard) IsOpen() bool { return s.ShardState == Open }

// IsClosed reports whether the shard has reached its terminal state.
func (s *Shard) IsClosed() bool { return s.ShardState == Closed }

// SourceUid returns the SourceUid this shard belongs to.
func (s *Shard) SourceUid() shardid.SourceUid {
	return shardid.SourceUid{IndexUid: s.IndexUid, SourceId: s.SourceId}
}

// ShardEntry augments a Shard with a runtime observation: the last known
// ingestion rate, in MiB/s. It embeds *Shard so callers can read and
// mutate the underlying shard's state transparently, the way the Rust
// ShardEntry Derefs to Shard.
type ShardEntry struct {
	*Shard
	IngestionRateMiBPerSec int
}

// NewShardEntry wraps a Shard with a zero ingestion rate.
func NewShardEntry(s *Shard) *ShardEntry {
	return &ShardEntry{Shard: s}
}

// Clone returns a deep-enough copy of the entry: a fresh Shard value and a
// fresh FollowerIds slice, safe for a caller to mutate without affecting
// the table's copy.
func (e *ShardEntry) Clone() *ShardEntry {
	shardCopy := *e.Shard
	if e.FollowerIds != nil {
		shardCopy.FollowerIds = append([]shardid.NodeId(nil), e.FollowerIds...)
	}
	return &ShardEntry{Shard: &shardCopy, IngestionRateMiBPerSec: e.IngestionRateMiBPerSec}
}

// Info is the gossiped observation of a shard's state and load, as
// broadcast by the ingester hosting it and consumed in batches by
// ShardTable.UpdateShards.
type Info struct {
	ShardId                shardid.ShardId
	ShardState             ShardState
	IngestionRateMiBPerSec int
}
