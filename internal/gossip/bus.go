package gossip

import (
	"sync"

	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

// Batch is one gossiped update: a source and the shard observations
// collected for it since the last round. It is the wire shape consumed by
// ShardTable.UpdateShards.
type Batch struct {
	SourceUid shardid.SourceUid
	Infos     []shard.Info
}

// Bus is a minimal in-process publish/subscribe point for Batch values.
// It replaces torua's HTTP-based BroadcastRequest plumbing with a channel,
// since the shard table's own scope explicitly excludes network I/O; a
// production deployment would publish onto this Bus from whatever gossip
// transport (Chitchat, SWIM, a message queue) actually carries the data
// between ingesters and the control plane.
type Bus struct {
	mu          sync.Mutex
	subscribers []chan Batch
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel that receives every Batch published after
// the call. The channel is buffered so Publish never blocks on a slow
// subscriber beyond the buffer size.
func (b *Bus) Subscribe(buffer int) <-chan Batch {
	ch := make(chan Batch, buffer)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

// Publish fans a batch out to every current subscriber. A subscriber
// whose buffer is full drops the batch rather than blocking the
// publisher, since gossip is allowed to lose updates: the next round
// supersedes it.
func (b *Bus) Publish(batch Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- batch:
		default:
		}
	}
}
