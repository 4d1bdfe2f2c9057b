package coordinator

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

// ShardStats summarizes a source's open shards after an UpdateShards call.
type ShardStats struct {
	NumOpenShards    int
	AvgIngestionRate float64
}

// SourceShards pairs a source with the shards currently known for it, the
// element type returned by AllShardsWithSource.
type SourceShards struct {
	SourceUid shardid.SourceUid
	Shards    []*shard.ShardEntry
}

// ShardTable is the control plane's authoritative, in-memory projection of
// shard-to-source and shard-to-node membership. See doc.go for the full
// architecture description.
//
// Thread-Safety: ShardTable carries no internal lock. It is meant to be
// owned exclusively by one actor goroutine (see cmd/controlplane) that
// applies mutations serially. Concurrent access from multiple goroutines
// without external synchronization is a bug in the caller, not something
// this type protects against.
//
// Example:
//
//	table := NewShardTable(WithLogger(logger))
//	table.InitializeSourceShards(sourceUid, seedShards)
//	entries, ok := table.ListShards(sourceUid)
type ShardTable struct {
	// tableEntries is the primary index: SourceUid -> per-source bucket.
	// It owns every ShardEntry value in the table.
	tableEntries map[shardid.SourceUid]*ShardTableEntry

	// ingesterShards is the derived index: NodeId -> SourceUid -> sorted
	// ShardId slice, standing in for the Rust BTreeSet<ShardId>. Holds
	// only identifiers; every mutating method keeps this in lockstep with
	// tableEntries within the same call.
	ingesterShards map[shardid.NodeId]map[shardid.SourceUid][]shardid.ShardId

	// logger receives the soft-inconsistency warnings and errors
	// documented per-method below. Defaults to a no-op logger.
	logger *zap.Logger
}

// Option configures a ShardTable at construction time.
type Option func(*ShardTable)

// WithLogger attaches a structured logger used for the soft-inconsistency
// warnings and errors described in spec §7. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *ShardTable) { t.logger = logger }
}

// NewShardTable returns an empty ShardTable.
func NewShardTable(opts ...Option) *ShardTable {
	t := &ShardTable{
		tableEntries:   make(map[shardid.SourceUid]*ShardTableEntry),
		ingesterShards: make(map[shardid.NodeId]map[shardid.SourceUid][]shardid.ShardId),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// addShardToIngesters records shard s as hosted on every one of its
// ingester nodes, under sourceUid, maintaining the ordered membership set.
func (t *ShardTable) addShardToIngesters(sourceUid shardid.SourceUid, s *shard.Shard) {
	for _, node := range s.IngesterNodes() {
		bySource, ok := t.ingesterShards[node]
		if !ok {
			bySource = make(map[shardid.SourceUid][]shardid.ShardId)
			t.ingesterShards[node] = bySource
		}
		shardIds := bySource[sourceUid]
		idx, found := slices.BinarySearch(shardIds, s.ShardId)
		if !found {
			bySource[sourceUid] = slices.Insert(shardIds, idx, s.ShardId)
		}
	}
}

// removeShardFromIngesters strips shard s from every ingester's membership
// set for sourceUid. Panics if the secondary index is missing an entry it
// must have, since that means the table is already inconsistent.
func (t *ShardTable) removeShardFromIngesters(sourceUid shardid.SourceUid, s *shard.Shard) {
	for _, node := range s.IngesterNodes() {
		bySource, ok := t.ingesterShards[node]
		if !ok {
			panic("shard table reached inconsistent state: missing ingester entry for node " + string(node))
		}
		shardIds, ok := bySource[sourceUid]
		if !ok {
			panic("shard table reached inconsistent state: missing source entry for node " + string(node))
		}
		if idx, found := slices.BinarySearch(shardIds, s.ShardId); found {
			bySource[sourceUid] = slices.Delete(shardIds, idx, idx+1)
		}
	}
}

// checkInvariant walks both indices and panics if they disagree. It is a
// no-op outside of `go test`, mirroring the Rust implementation's
// cfg(debug_assertions) gate: the check is O(shards × replicas) and isn't
// worth paying for in production.
func (t *ShardTable) checkInvariant() {
	if !testing.Testing() {
		return
	}
	type triple struct {
		node      shardid.NodeId
		sourceUid shardid.SourceUid
		shardId   shardid.ShardId
	}
	fromTable := make(map[triple]struct{})
	for sourceUid, entry := range t.tableEntries {
		for shardId, se := range entry.shardEntries {
			if shardId != se.ShardId {
				panic("shard table reached inconsistent state: shard id key mismatch")
			}
			if se.IndexUid != sourceUid.IndexUid || se.SourceId != sourceUid.SourceId {
				panic("shard table reached inconsistent state: shard source mismatch")
			}
			for _, node := range se.IngesterNodes() {
				fromTable[triple{node, sourceUid, shardId}] = struct{}{}
			}
		}
	}
	for node, bySource := range t.ingesterShards {
		for sourceUid, shardIds := range bySource {
			entry, ok := t.tableEntries[sourceUid]
			if !ok {
				panic("shard table reached inconsistent state: ingester references unknown source")
			}
			for _, shardId := range shardIds {
				if _, ok := entry.shardEntries[shardId]; !ok {
					panic("shard table reached inconsistent state: ingester references unknown shard")
				}
				key := triple{node, sourceUid, shardId}
				if _, ok := fromTable[key]; !ok {
					panic("shard table reached inconsistent state: ingester entry absent from primary index")
				}
				delete(fromTable, key)
			}
		}
	}
	if len(fromTable) != 0 {
		panic("shard table reached inconsistent state: primary index entries missing from ingester index")
	}
}

// ---- read operations ----

// ListShardsForNode returns the shard ids hosted by node, grouped by
// source, or ok=false if the node is unknown. The returned map and slices
// are copies, safe for the caller to keep or mutate.
func (t *ShardTable) ListShardsForNode(node shardid.NodeId) (result map[shardid.SourceUid][]shardid.ShardId, ok bool) {
	bySource, found := t.ingesterShards[node]
	if !found {
		return nil, false
	}
	result = make(map[shardid.SourceUid][]shardid.ShardId, len(bySource))
	for sourceUid, shardIds := range bySource {
		result[sourceUid] = append([]shardid.ShardId(nil), shardIds...)
	}
	return result, true
}

// ListShardsForIndex returns every shard entry across all sources under
// the given index.
func (t *ShardTable) ListShardsForIndex(indexUid shardid.IndexUid) []*shard.ShardEntry {
	var out []*shard.ShardEntry
	for sourceUid, entry := range t.tableEntries {
		if sourceUid.IndexUid != indexUid {
			continue
		}
		for _, se := range entry.shardEntries {
			out = append(out, se.Clone())
		}
	}
	return out
}

// ListShards returns the shard entries of a source, or ok=false if the
// source is unknown.
func (t *ShardTable) ListShards(sourceUid shardid.SourceUid) (entries []*shard.ShardEntry, ok bool) {
	entry, found := t.tableEntries[sourceUid]
	if !found {
		return nil, false
	}
	entries = make([]*shard.ShardEntry, 0, len(entry.shardEntries))
	for _, se := range entry.shardEntries {
		entries = append(entries, se.Clone())
	}
	return entries, true
}

// AllShardsWithSource returns every source along with its current shards,
// ordered by source uid so callers (logging, demo output, tests) see a
// stable iteration order despite the underlying map.
func (t *ShardTable) AllShardsWithSource() []SourceShards {
	sourceUids := make([]shardid.SourceUid, 0, len(t.tableEntries))
	for sourceUid := range maps.Keys(t.tableEntries) {
		sourceUids = append(sourceUids, sourceUid)
	}
	slices.SortFunc(sourceUids, func(a, b shardid.SourceUid) int {
		return strings.Compare(a.String(), b.String())
	})
	out := make([]SourceShards, 0, len(sourceUids))
	for _, sourceUid := range sourceUids {
		entry := t.tableEntries[sourceUid]
		shards := make([]*shard.ShardEntry, 0, len(entry.shardEntries))
		for _, se := range entry.shardEntries {
			shards = append(shards, se.Clone())
		}
		out = append(out, SourceShards{SourceUid: sourceUid, Shards: shards})
	}
	return out
}

// AllShards returns every shard entry across every source. Primarily
// useful for tests and debug tooling.
func (t *ShardTable) AllShards() []*shard.ShardEntry {
	var out []*shard.ShardEntry
	for _, entry := range t.tableEntries {
		for _, se := range entry.shardEntries {
			out = append(out, se.Clone())
		}
	}
	return out
}

// NumShards returns the total shard count across all sources.
func (t *ShardTable) NumShards() int {
	total := 0
	for _, entry := range t.tableEntries {
		total += len(entry.shardEntries)
	}
	return total
}

// FindOpenShards returns the open shards of (indexUid, sourceId) whose
// leader is not in unavailableLeaders, or ok=false if the source is
// unknown.
func (t *ShardTable) FindOpenShards(
	indexUid shardid.IndexUid,
	sourceId shardid.SourceId,
	unavailableLeaders map[shardid.NodeId]struct{},
) (open []*shard.ShardEntry, ok bool) {
	sourceUid := shardid.SourceUid{IndexUid: indexUid, SourceId: sourceId}
	entry, found := t.tableEntries[sourceUid]
	if !found {
		return nil, false
	}
	for _, se := range entry.shardEntries {
		if !se.IsOpen() {
			continue
		}
		if _, unavailable := unavailableLeaders[se.LeaderId]; unavailable {
			continue
		}
		open = append(open, se.Clone())
	}
	if open == nil {
		open = []*shard.ShardEntry{}
	}
	return open, true
}

// ---- mutating operations ----

// AddSource inserts a default, empty entry for (indexUid, sourceId). If an
// entry already existed and was non-empty, the replacement proceeds
// anyway and the error is logged: the caller's contract promised this
// source was unknown, and the prior shards (and any stale ingesterShards
// membership they left behind) are now orphaned. See DESIGN.md for the
// accepted tradeoff.
func (t *ShardTable) AddSource(indexUid shardid.IndexUid, sourceId shardid.SourceId) {
	sourceUid := shardid.SourceUid{IndexUid: indexUid, SourceId: sourceId}
	previous, existed := t.tableEntries[sourceUid]
	t.tableEntries[sourceUid] = newShardTableEntry()
	if existed && !previous.isEmpty() {
		t.logger.Error("shard table entry already exists and is non-empty, overwriting",
			zap.String("index_id", indexUid.IndexID()),
			zap.String("source_id", string(sourceId)),
		)
	}
	t.checkInvariant()
}

// DeleteSource removes the entry for (indexUid, sourceId) and strips its
// shards from the ingester index. No-op if the source is unknown.
func (t *ShardTable) DeleteSource(indexUid shardid.IndexUid, sourceId shardid.SourceId) {
	sourceUid := shardid.SourceUid{IndexUid: indexUid, SourceId: sourceId}
	entry, ok := t.tableEntries[sourceUid]
	if !ok {
		return
	}
	for _, se := range entry.shardEntries {
		t.removeShardFromIngesters(sourceUid, se.Shard)
	}
	delete(t.tableEntries, sourceUid)
	t.checkInvariant()
}

// DeleteIndex removes every source entry whose index id matches indexID,
// across every generation of that index.
func (t *ShardTable) DeleteIndex(indexID string) {
	var toDelete []shardid.SourceUid
	for sourceUid, entry := range t.tableEntries {
		if sourceUid.IndexUid.IndexID() != indexID {
			continue
		}
		for _, se := range entry.shardEntries {
			t.removeShardFromIngesters(sourceUid, se.Shard)
		}
		toDelete = append(toDelete, sourceUid)
	}
	for _, sourceUid := range toDelete {
		delete(t.tableEntries, sourceUid)
	}
	t.checkInvariant()
}

// InsertNewlyOpenedShards merges newly opened shards into the table. Every
// shard in shards must already carry the given indexUid/sourceId; a
// mismatch is a fatal programmer error because it means the caller
// violated the source-of-truth contract the shard table relies on.
//
// Shards already known to the table are left untouched: the control plane
// is more authoritative than a late-arriving metastore read and must not
// clobber newer state. If the source itself is unknown, an entry is
// created on the fly and the event is logged, since in a consistent
// system this path should not be exercised.
func (t *ShardTable) InsertNewlyOpenedShards(
	indexUid shardid.IndexUid,
	sourceId shardid.SourceId,
	shards []*shard.Shard,
) {
	sourceUid := shardid.SourceUid{IndexUid: indexUid, SourceId: sourceId}
	for _, s := range shards {
		if s.IndexUid != sourceUid.IndexUid || s.SourceId != sourceUid.SourceId {
			panic("shard source uid " + string(s.IndexUid) + "/" + string(s.SourceId) +
				" does not match source uid " + sourceUid.String())
		}
	}
	for _, s := range shards {
		t.addShardToIngesters(sourceUid, s)
	}
	entry, ok := t.tableEntries[sourceUid]
	if !ok {
		t.logger.Warn("inserting newly opened shards for unknown source, creating entry",
			zap.String("index_id", indexUid.IndexID()),
			zap.String("source_id", string(sourceId)),
		)
		entry = newShardTableEntry()
		t.tableEntries[sourceUid] = entry
	}
	for _, s := range shards {
		if _, exists := entry.shardEntries[s.ShardId]; !exists {
			entry.shardEntries[s.ShardId] = shard.NewShardEntry(s)
		}
	}
	t.checkInvariant()
}

// InitializeSourceShards seeds a brand-new source from a metastore load.
// It panics if the source is already known: initialization is a one-shot
// operation and a second call means the caller is buggy. Only Open and
// Closed shards are kept, in both indices; any other state is dropped.
func (t *ShardTable) InitializeSourceShards(sourceUid shardid.SourceUid, shards []*shard.Shard) {
	entry := shardTableEntryFromShards(shards)
	for _, se := range entry.shardEntries {
		t.addShardToIngesters(sourceUid, se.Shard)
	}
	if _, exists := t.tableEntries[sourceUid]; exists {
		panic("shard table entry for source " + sourceUid.String() + " already exists")
	}
	t.tableEntries[sourceUid] = entry
	t.checkInvariant()
}

// UpdateShards ingests a batch of gossiped shard observations. Ingestion
// rate is always overwritten; the stored shard state only changes when
// the gossiped state is Closed, since gossip is eventually consistent and
// Closed is the only state the control plane treats as terminal and
// therefore trustworthy from a non-authoritative source. Unknown shards
// in the batch are ignored. The returned stats reflect the source's open
// shards after applying the batch.
func (t *ShardTable) UpdateShards(sourceUid shardid.SourceUid, infos []shard.Info) ShardStats {
	entry, ok := t.tableEntries[sourceUid]
	if ok {
		for _, info := range infos {
			se, exists := entry.shardEntries[info.ShardId]
			if !exists {
				continue
			}
			se.IngestionRateMiBPerSec = info.IngestionRateMiBPerSec
			if info.ShardState == shard.Closed {
				se.ShardState = shard.Closed
			}
		}
	}
	var numOpen, rateSum int
	if ok {
		for _, se := range entry.shardEntries {
			if se.IsOpen() {
				numOpen++
				rateSum += se.IngestionRateMiBPerSec
			}
		}
	}
	stats := ShardStats{NumOpenShards: numOpen}
	if numOpen > 0 {
		stats.AvgIngestionRate = float64(rateSum) / float64(numOpen)
	}
	return stats
}

// CloseShards transitions the listed shards to Closed and returns the ids
// that actually transitioned this call (already-closed or unknown ids are
// skipped silently, so a repeated call returns an empty slice).
func (t *ShardTable) CloseShards(sourceUid shardid.SourceUid, shardIds []shardid.ShardId) []shardid.ShardId {
	var closed []shardid.ShardId
	entry, ok := t.tableEntries[sourceUid]
	if !ok {
		return closed
	}
	for _, id := range shardIds {
		se, exists := entry.shardEntries[id]
		if !exists || se.IsClosed() {
			continue
		}
		se.ShardState = shard.Closed
		closed = append(closed, id)
	}
	return closed
}

// DeleteShards removes the listed shards from a source. Unknown ids are
// logged and skipped. The source entry itself is never removed, even if
// it becomes empty as a result.
func (t *ShardTable) DeleteShards(sourceUid shardid.SourceUid, shardIds []shardid.ShardId) {
	entry, ok := t.tableEntries[sourceUid]
	if !ok {
		return
	}
	var removed []*shard.ShardEntry
	for _, id := range shardIds {
		se, exists := entry.shardEntries[id]
		if !exists {
			t.logger.Warn("deleting a non-existing shard",
				zap.String("source", sourceUid.String()),
				zap.String("shard_id", string(id)),
			)
			continue
		}
		delete(entry.shardEntries, id)
		removed = append(removed, se)
	}
	for _, se := range removed {
		t.removeShardFromIngesters(sourceUid, se.Shard)
	}
	t.checkInvariant()
}

// AcquireScalingPermits attempts to acquire n permits from the given
// source's scaling limiter. ok is false if the source is unknown;
// otherwise granted reports whether the acquisition succeeded.
func (t *ShardTable) AcquireScalingPermits(sourceUid shardid.SourceUid, mode ScalingMode, n uint64) (granted bool, ok bool) {
	entry, exists := t.tableEntries[sourceUid]
	if !exists {
		return false, false
	}
	return entry.rateLimiterFor(mode).Acquire(n), true
}

// ReleaseScalingPermits returns n permits to the given source's scaling
// limiter. No-op if the source is unknown.
func (t *ShardTable) ReleaseScalingPermits(sourceUid shardid.SourceUid, mode ScalingMode, n uint64) {
	entry, exists := t.tableEntries[sourceUid]
	if !exists {
		return
	}
	entry.rateLimiterFor(mode).Release(n)
}
