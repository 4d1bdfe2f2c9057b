package coordinator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dreamware/shardtable/internal/shardid"
)

// LeaderHealthTracker maintains the set of ingester nodes currently
// believed unreachable as shard leaders, so the ingest router can build
// the unavailableLeaders argument to ShardTable.FindOpenShards.
//
// It is adapted from HealthMonitor in the example repo's
// internal/coordinator package: the same consecutive-failure-counting
// state machine, but driven by caller-reported results instead of polling
// an HTTP /health endpoint itself. This package performs no network I/O.
// A real deployment wires the actual probing (HTTP, gossip liveness, etc.)
// as an external collaborator that calls ReportSuccess/ReportFailure.
type LeaderHealthTracker struct {
	mu          sync.RWMutex
	failures    map[shardid.NodeId]int
	unavailable map[shardid.NodeId]struct{}
	maxFailures int
	logger      *zap.Logger
}

// NewLeaderHealthTracker returns a tracker that marks a node unavailable
// after maxFailures consecutive reported failures.
func NewLeaderHealthTracker(maxFailures int, logger *zap.Logger) *LeaderHealthTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderHealthTracker{
		failures:    make(map[shardid.NodeId]int),
		unavailable: make(map[shardid.NodeId]struct{}),
		maxFailures: maxFailures,
		logger:      logger,
	}
}

// ReportFailure records a failed probe of node. Once maxFailures
// consecutive failures accumulate, the node is marked unavailable.
func (h *LeaderHealthTracker) ReportFailure(node shardid.NodeId) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.failures[node]++
	if h.failures[node] >= h.maxFailures {
		if _, already := h.unavailable[node]; !already {
			h.logger.Warn("ingester marked unavailable as shard leader",
				zap.String("node_id", string(node)),
				zap.Int("consecutive_failures", h.failures[node]),
			)
		}
		h.unavailable[node] = struct{}{}
	}
}

// ReportSuccess clears node's failure count and marks it available again.
func (h *LeaderHealthTracker) ReportSuccess(node shardid.NodeId) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, wasUnavailable := h.unavailable[node]; wasUnavailable {
		h.logger.Info("ingester recovered as shard leader", zap.String("node_id", string(node)))
	}
	delete(h.failures, node)
	delete(h.unavailable, node)
}

// UnavailableLeaders returns a snapshot of the currently unavailable node
// set, ready to pass to ShardTable.FindOpenShards.
func (h *LeaderHealthTracker) UnavailableLeaders() map[shardid.NodeId]struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[shardid.NodeId]struct{}, len(h.unavailable))
	for node := range h.unavailable {
		out[node] = struct{}{}
	}
	return out
}

// IsUnavailable reports whether node is currently considered unavailable.
func (h *LeaderHealthTracker) IsUnavailable(node shardid.NodeId) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, unavailable := h.unavailable[node]
	return unavailable
}
