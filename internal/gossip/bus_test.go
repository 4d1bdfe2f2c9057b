package gossip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)

	batch := Batch{
		SourceUid: shardid.SourceUid{IndexUid: "idx:0", SourceId: "s"},
		Infos:     []shard.Info{{ShardId: "1", ShardState: shard.Open, IngestionRateMiBPerSec: 2}},
	}
	bus.Publish(batch)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, batch, <-a)
	assert.Equal(t, batch, <-b)
}

func TestBusDropsOnFullBuffer(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(1)

	bus.Publish(Batch{SourceUid: shardid.SourceUid{IndexUid: "idx:0", SourceId: "s"}})
	bus.Publish(Batch{SourceUid: shardid.SourceUid{IndexUid: "idx:0", SourceId: "other"}})

	assert.Len(t, sub, 1)
}
