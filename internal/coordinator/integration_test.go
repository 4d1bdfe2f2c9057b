package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardtable/internal/coordinator"
	"github.com/dreamware/shardtable/internal/gossip"
	"github.com/dreamware/shardtable/internal/metastore"
	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

// TestFullLifecycle exercises the path a real control plane actor takes:
// a metastore snapshot load, a round of gossiped shard observations, a
// scaling decision gated by permits, a graceful close, and finally index
// teardown.
func TestFullLifecycle(t *testing.T) {
	table := coordinator.NewShardTable()
	loader := metastore.NewLoader(table)

	sourceUid := shardid.SourceUid{IndexUid: "logs-index:0", SourceId: "ingest-v1"}
	loader.LoadSnapshot(metastore.Snapshot{
		Sources: []metastore.SourceSnapshot{
			{
				SourceUid: sourceUid,
				Shards: []*shard.Shard{
					{IndexUid: sourceUid.IndexUid, SourceId: sourceUid.SourceId, ShardId: "1", ShardState: shard.Open, LeaderId: "node-1"},
					{IndexUid: sourceUid.IndexUid, SourceId: sourceUid.SourceId, ShardId: "2", ShardState: shard.Open, LeaderId: "node-2"},
				},
			},
		},
	})

	entries, ok := table.ListShards(sourceUid)
	require.True(t, ok)
	require.Len(t, entries, 2)

	bus := gossip.NewBus()
	sub := bus.Subscribe(4)
	bus.Publish(gossip.Batch{
		SourceUid: sourceUid,
		Infos: []shard.Info{
			{ShardId: "1", ShardState: shard.Open, IngestionRateMiBPerSec: 4},
			{ShardId: "2", ShardState: shard.Open, IngestionRateMiBPerSec: 8},
		},
	})
	batch := <-sub
	stats := table.UpdateShards(batch.SourceUid, batch.Infos)
	assert.Equal(t, 2, stats.NumOpenShards)
	assert.Equal(t, 6.0, stats.AvgIngestionRate)

	granted, ok := table.AcquireScalingPermits(sourceUid, coordinator.ScaleUp, 1)
	require.True(t, ok)
	assert.True(t, granted)

	health := coordinator.NewLeaderHealthTracker(2, nil)
	health.ReportFailure("node-2")
	health.ReportFailure("node-2")
	assert.True(t, health.IsUnavailable("node-2"))

	open, ok := table.FindOpenShards(sourceUid.IndexUid, sourceUid.SourceId, health.UnavailableLeaders())
	require.True(t, ok)
	require.Len(t, open, 1)
	assert.Equal(t, shardid.ShardId("1"), open[0].ShardId)

	closed := table.CloseShards(sourceUid, []shardid.ShardId{"1"})
	assert.Equal(t, []shardid.ShardId{"1"}, closed)

	table.ReleaseScalingPermits(sourceUid, coordinator.ScaleUp, 1)

	loader.DeleteIndex("logs-index")
	_, ok = table.ListShards(sourceUid)
	assert.False(t, ok)
}
