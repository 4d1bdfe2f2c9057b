package metastore

import (
	"github.com/dreamware/shardtable/internal/coordinator"
	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

// SourceSnapshot is the metastore's view of one source's shards at load
// time.
type SourceSnapshot struct {
	SourceUid shardid.SourceUid
	Shards    []*shard.Shard
}

// Snapshot is a point-in-time view of every source the metastore knows
// about, as would be fetched once at control-plane startup.
type Snapshot struct {
	Sources []SourceSnapshot
}

// Loader applies metastore-driven events to a ShardTable: the initial
// snapshot load, plus the same add/delete operations a metastore
// change-notification stream would trigger afterwards.
type Loader struct {
	table *coordinator.ShardTable
}

// NewLoader returns a Loader that drives table.
func NewLoader(table *coordinator.ShardTable) *Loader {
	return &Loader{table: table}
}

// LoadSnapshot seeds table from a full metastore snapshot. It panics if
// called twice for the same source, via ShardTable.InitializeSourceShards's
// own one-shot contract.
func (l *Loader) LoadSnapshot(snapshot Snapshot) {
	for _, source := range snapshot.Sources {
		l.table.InitializeSourceShards(source.SourceUid, source.Shards)
	}
}

// AddSource forwards a metastore "source created" notification.
func (l *Loader) AddSource(indexUid shardid.IndexUid, sourceId shardid.SourceId) {
	l.table.AddSource(indexUid, sourceId)
}

// DeleteSource forwards a metastore "source deleted" notification.
func (l *Loader) DeleteSource(indexUid shardid.IndexUid, sourceId shardid.SourceId) {
	l.table.DeleteSource(indexUid, sourceId)
}

// DeleteIndex forwards a metastore "index deleted" notification, removing
// every generation of indexID.
func (l *Loader) DeleteIndex(indexID string) {
	l.table.DeleteIndex(indexID)
}
