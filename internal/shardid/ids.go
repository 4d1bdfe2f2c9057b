package shardid

import "strings"

// IndexUid globally identifies an index across its generations. It is
// formatted as "<index_id>:<generation>", e.g. "logs-2024:0". Two IndexUid
// values referring to different generations of the same index share the
// same IndexID but are distinct keys everywhere else in the table.
type IndexUid string

// IndexID returns the human-readable index name, stripping the generation
// suffix. If the uid carries no ':' separator, the whole value is returned
// unchanged.
func (u IndexUid) IndexID() string {
	if idx := strings.LastIndex(string(u), ":"); idx >= 0 {
		return string(u)[:idx]
	}
	return string(u)
}

// SourceId identifies a data source within an index.
type SourceId string

// NodeId identifies an ingester process.
type NodeId string

// ShardId identifies a shard within its source.
type ShardId string

// SourceUid is the primary key of a shard group: one source within one
// index generation.
type SourceUid struct {
	IndexUid IndexUid
	SourceId SourceId
}

func (s SourceUid) String() string {
	return string(s.IndexUid) + "/" + string(s.SourceId)
}
