// Package gossip models the shape of the eventually-consistent status
// channel ingesters use to broadcast shard observations to the control
// plane.
//
// It is adapted from torua's internal/cluster package: the same
// publish/subscribe shape as torua's BroadcastRequest, but without the
// HTTP transport. Real gossip transport (Chitchat, SWIM, a message bus)
// stays an external collaborator, so Bus here is an in-process stand-in
// used by cmd/controlplane's demo loop and by tests that want to drive
// ShardTable.UpdateShards from something shaped like the real wire format
// instead of calling it directly.
package gossip
