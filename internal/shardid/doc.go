// Package shardid defines the opaque identifiers shared by every layer of
// the shard table: index, source, shard, and node ids, plus the compound
// SourceUid key used throughout internal/coordinator.
//
// All types here are comparable string wrappers so they can be used
// directly as map keys without a custom Hash implementation, mirroring how
// torua's internal/cluster kept NodeInfo.ID as a plain string. The only
// non-trivial behavior is IndexUid.IndexID, which recovers the
// human-readable index name from a generation-suffixed uid.
package shardid
