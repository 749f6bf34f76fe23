package progress

import "sync/atomic"

// Stats holds the counters for one run. Workers and the writer update them
// concurrently; the Reporter reads them. All updates are atomic.
//
// A Stats value is created per run and handed to every component at
// construction time. There is no process-wide instance.
type Stats struct {
	totalShards     int64
	shardsCompleted atomic.Int64
	shardsFailed    atomic.Int64
	recordsWritten  atomic.Int64
	parseFailures   atomic.Int64
	bytesDownloaded atomic.Int64
}

// NewStats creates a Stats for a run over totalShards shards.
func NewStats(totalShards int) *Stats {
	return &Stats{totalShards: int64(totalShards)}
}

// TotalShards returns the number of shards in the catalog.
func (s *Stats) TotalShards() int64 { return s.totalShards }

// ShardCompleted records one successfully processed shard.
func (s *Stats) ShardCompleted() { s.shardsCompleted.Add(1) }

// ShardFailed records one shard that exhausted its retries.
func (s *Stats) ShardFailed() { s.shardsFailed.Add(1) }

// RecordWritten records one serialized output row.
func (s *Stats) RecordWritten() { s.recordsWritten.Add(1) }

// ParseFailure records one malformed index line.
func (s *Stats) ParseFailure() { s.parseFailures.Add(1) }

// AddBytes records n bytes pulled from the remote store.
func (s *Stats) AddBytes(n int64) { s.bytesDownloaded.Add(n) }

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalShards     int64
	ShardsCompleted int64
	ShardsFailed    int64
	RecordsWritten  int64
	ParseFailures   int64
	BytesDownloaded int64
}

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TotalShards:     s.totalShards,
		ShardsCompleted: s.shardsCompleted.Load(),
		ShardsFailed:    s.shardsFailed.Load(),
		RecordsWritten:  s.recordsWritten.Load(),
		ParseFailures:   s.parseFailures.Load(),
		BytesDownloaded: s.bytesDownloaded.Load(),
	}
}

// Done reports whether every shard has been accounted for.
func (s Snapshot) Done() bool {
	return s.ShardsCompleted+s.ShardsFailed >= s.TotalShards
}
