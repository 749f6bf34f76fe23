package pool

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/extract"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/fetch"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/progress"
)

// MaxWorkers caps the concurrency level to keep a mistyped flag from
// exhausting sockets and file descriptors.
const MaxWorkers = 512

// Options configures the worker pool.
type Options struct {
	// Workers is the number of parallel shard workers.
	// Clamped to [1, MaxWorkers]. Default: 8
	Workers int

	// ChannelSize is the capacity of the record output channel. This
	// bounds unwritten records in memory to ChannelSize plus one per
	// worker. Default: 1024
	ChannelSize int

	// Logger receives per-shard diagnostics. Default: a discarding logger.
	Logger *log.Logger
}

// Pool drives Fetcher+Scanner across shards with a fixed set of workers.
type Pool struct {
	fetcher *fetch.Fetcher
	stats   *progress.Stats
	opts    Options
}

// New creates a pool. stats must not be nil.
func New(fetcher *fetch.Fetcher, stats *progress.Stats, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.Workers > MaxWorkers {
		opts.Workers = MaxWorkers
	}
	if opts.ChannelSize <= 0 {
		opts.ChannelSize = 1024
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Pool{fetcher: fetcher, stats: stats, opts: opts}
}

// Workers returns the effective concurrency level after clamping.
func (p *Pool) Workers() int { return p.opts.Workers }

// Run starts the workers over shards and returns the record channel. The
// channel is closed once every worker has exited, whether because the
// queue drained or the context was cancelled. Records from one shard keep
// their source order; records from different shards interleave arbitrarily.
func (p *Pool) Run(ctx context.Context, shards []index.Shard) <-chan extract.Record {
	work := make(chan index.Shard)
	out := make(chan extract.Record, p.opts.ChannelSize)

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for shard := range work {
				p.processShard(ctx, shard, out)
			}
		}()
	}

	// Feed the queue. It is fully known up front; workers only ever block
	// on claiming, never on scarcity.
	go func() {
		defer close(work)
		for _, shard := range shards {
			select {
			case work <- shard:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// processShard streams one shard into out. Fetch and stream faults mark
// the shard failed without touching the rest of the run.
func (p *Pool) processShard(ctx context.Context, shard index.Shard, out chan<- extract.Record) {
	stream, err := p.fetcher.Open(ctx, shard)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.stats.ShardFailed()
		p.opts.Logger.Warn("shard fetch failed", "url", shard.URL, "err", err)
		return
	}
	defer stream.Close()

	sc := extract.NewScanner(stream)
	for {
		rec, err := sc.Next()
		if err == io.EOF {
			p.stats.ShardCompleted()
			return
		}
		if errors.Is(err, extract.ErrMalformed) {
			p.stats.ParseFailure()
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.stats.ShardFailed()
			p.opts.Logger.Warn("shard stream broke", "url", shard.URL, "err", err)
			return
		}

		select {
		case out <- rec:
		case <-ctx.Done():
			return
		}
	}
}
