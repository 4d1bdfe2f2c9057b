// Command controlplane runs a minimal demonstration of the shard table as
// a single-actor control loop: one goroutine owns a *coordinator.ShardTable
// outright and applies every mutation to it serially.
//
// It deliberately exposes no HTTP API. A real control plane would sit a
// gRPC or HTTP surface in front of this loop and forward requests in as
// actor messages, but building that surface is not this binary's job, so
// it only wires the pieces needed for the demo: a metastore snapshot
// load, a gossip feed, and health tracking, logging what the actor does
// along the way. It does not acquire or release scaling permits.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dreamware/shardtable/internal/coordinator"
	"github.com/dreamware/shardtable/internal/gossip"
	"github.com/dreamware/shardtable/internal/metastore"
	"github.com/dreamware/shardtable/internal/shard"
	"github.com/dreamware/shardtable/internal/shardid"
)

// getenv reads an environment variable or returns def if it is unset.
func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load() // optional .env for local runs; absence is not an error

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	maxFailures := 3
	health := coordinator.NewLeaderHealthTracker(maxFailures, logger)

	table := coordinator.NewShardTable(coordinator.WithLogger(logger))
	loader := metastore.NewLoader(table)
	loader.LoadSnapshot(seedSnapshot())

	bus := gossip.NewBus()
	batches := bus.Subscribe(64)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("control plane actor started",
		zap.Int("num_shards", table.NumShards()),
		zap.String("addr", getenv("CONTROLPLANE_ADDR", "in-process")),
	)

	demoTick := time.NewTicker(5 * time.Second)
	defer demoTick.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("control plane actor shutting down")
			return
		case batch := <-batches:
			stats := table.UpdateShards(batch.SourceUid, batch.Infos)
			logger.Info("applied gossip batch",
				zap.String("source", batch.SourceUid.String()),
				zap.Int("num_open_shards", stats.NumOpenShards),
				zap.Float64("avg_ingestion_rate_mib", stats.AvgIngestionRate),
			)
		case <-demoTick.C:
			for node := range health.UnavailableLeaders() {
				logger.Warn("leader still unavailable", zap.String("node", string(node)))
			}
		}
	}
}

// seedSnapshot builds the initial metastore snapshot this demo loop loads
// at startup. A real deployment would fetch this from the external
// metastore client instead.
func seedSnapshot() metastore.Snapshot {
	sourceUid := shardid.SourceUid{IndexUid: "demo-index:0", SourceId: "demo-source"}
	return metastore.Snapshot{
		Sources: []metastore.SourceSnapshot{
			{
				SourceUid: sourceUid,
				Shards: []*shard.Shard{
					{
						IndexUid:   sourceUid.IndexUid,
						SourceId:   sourceUid.SourceId,
						ShardId:    "00000000000000000001",
						ShardState: shard.Open,
						LeaderId:   "node-1",
					},
				},
			},
		},
	}
}
