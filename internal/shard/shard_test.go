package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/shardtable/internal/shardid"
)

func TestIngesterNodesDedupesFollowers(t *testing.T) {
	s := &Shard{
		LeaderId:    "leader-0",
		FollowerIds: []shardid.NodeId{"follower-0", "leader-0", "follower-1"},
	}
	nodes := s.IngesterNodes()
	assert.Equal(t, []shardid.NodeId{"leader-0", "follower-0", "follower-1"}, nodes)
}

func TestIngesterNodesNoFollowers(t *testing.T) {
	s := &Shard{LeaderId: "leader-0"}
	assert.Equal(t, []shardid.NodeId{"leader-0"}, s.IngesterNodes())
}

func TestShardEntryClone(t *testing.T) {
	original := &Shard{LeaderId: "leader-0", FollowerIds: []shardid.NodeId{"follower-0"}}
	entry := NewShardEntry(original)
	entry.IngestionRateMiBPerSec = 4

	clone := entry.Clone()
	clone.ShardState = Closed
	clone.FollowerIds[0] = "mutated"

	assert.Equal(t, Unspecified, entry.ShardState)
	assert.Equal(t, shardid.NodeId("follower-0"), original.FollowerIds[0])
	assert.Equal(t, 4, clone.IngestionRateMiBPerSec)
}

func TestIsOpenIsClosed(t *testing.T) {
	s := &Shard{ShardState: Open}
	assert.True(t, s.IsOpen())
	assert.False(t, s.IsClosed())

	s.ShardState = Closed
	assert.False(t, s.IsOpen())
	assert.True(t, s.IsClosed())
}
