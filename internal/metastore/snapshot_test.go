package metastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardtable/internal/coordinator"
	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

func TestLoadSnapshotSeedsTable(t *testing.T) {
	table := coordinator.NewShardTable()
	loader := NewLoader(table)

	sourceA := shardid.SourceUid{IndexUid: "idx:0", SourceId: "a"}
	sourceB := shardid.SourceUid{IndexUid: "idx:0", SourceId: "b"}
	snapshot := Snapshot{
		Sources: []SourceSnapshot{
			{
				SourceUid: sourceA,
				Shards: []*shard.Shard{
					{IndexUid: sourceA.IndexUid, SourceId: sourceA.SourceId, ShardId: "1", ShardState: shard.Open, LeaderId: "node-1"},
				},
			},
			{SourceUid: sourceB, Shards: nil},
		},
	}

	loader.LoadSnapshot(snapshot)

	shardsA, ok := table.ListShards(sourceA)
	require.True(t, ok)
	require.Len(t, shardsA, 1)
	assert.Equal(t, shardid.ShardId("1"), shardsA[0].ShardId)

	shardsB, ok := table.ListShards(sourceB)
	require.True(t, ok)
	assert.Empty(t, shardsB)
}

func TestLoaderForwardsMetastoreEvents(t *testing.T) {
	table := coordinator.NewShardTable()
	loader := NewLoader(table)

	loader.AddSource("idx:0", "a")
	_, ok := table.ListShards(shardid.SourceUid{IndexUid: "idx:0", SourceId: "a"})
	require.True(t, ok)

	loader.DeleteSource("idx:0", "a")
	_, ok = table.ListShards(shardid.SourceUid{IndexUid: "idx:0", SourceId: "a"})
	assert.False(t, ok)

	loader.AddSource("idx:0", "b")
	loader.DeleteIndex("idx")
	_, ok = table.ListShards(shardid.SourceUid{IndexUid: "idx:0", SourceId: "b"})
	assert.False(t, ok)
}
