package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/shardtable/internal/shardid"
)

func TestLeaderHealthTrackerMarksUnavailableAfterThreshold(t *testing.T) {
	tracker := NewLeaderHealthTracker(3, nil)
	node := shardid.NodeId("leader-0")

	assert.False(t, tracker.IsUnavailable(node))

	tracker.ReportFailure(node)
	tracker.ReportFailure(node)
	assert.False(t, tracker.IsUnavailable(node))

	tracker.ReportFailure(node)
	assert.True(t, tracker.IsUnavailable(node))
}

func TestLeaderHealthTrackerRecovers(t *testing.T) {
	tracker := NewLeaderHealthTracker(1, nil)
	node := shardid.NodeId("leader-0")

	tracker.ReportFailure(node)
	assert.True(t, tracker.IsUnavailable(node))

	tracker.ReportSuccess(node)
	assert.False(t, tracker.IsUnavailable(node))
}

func TestUnavailableLeadersSnapshotIsIndependent(t *testing.T) {
	tracker := NewLeaderHealthTracker(1, nil)
	tracker.ReportFailure("leader-0")

	snapshot := tracker.UnavailableLeaders()
	snapshot["leader-1"] = struct{}{}

	assert.False(t, tracker.IsUnavailable("leader-1"))
	assert.Len(t, tracker.UnavailableLeaders(), 1)
}
