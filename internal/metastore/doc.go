// Package metastore models the upstream "metastore loader" producer named
// in the shard table's external interfaces: the authoritative source of
// which indexes, sources, and shards exist, replayed into a ShardTable at
// control-plane startup.
//
// It is adapted from torua's internal/storage key/value Store: the same
// shape, a simple in-memory structure wrapping a backing data set, but
// repurposed from persisting arbitrary bytes to holding a point-in-time
// Snapshot of shard-table seed data. The shard table itself never writes
// anything to disk; this package exists so cmd/controlplane has something
// concrete to load from without reaching for a real metastore client,
// which stays an external collaborator.
package metastore
