package mapper

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/fetch"
	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/output"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/pool"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/progress"
)

// Options configures one run.
type Options struct {
	// IndexID selects the index to crawl. Empty means the newest
	// published index.
	IndexID string

	// Output is the local output file path. Empty means
	// mapping-<indexID>.csv.gz in the working directory.
	Output string

	// BucketURL, when set, writes the output to this gocloud.dev/blob
	// bucket instead of the local filesystem, using Output as the key.
	BucketURL string

	// Workers is the shard concurrency level.
	Workers int

	// ChannelSize is the record channel capacity.
	ChannelSize int

	// SizeHints gathers shard sizes up front for progress weighting.
	SizeHints bool

	// Progress enables the live progress display.
	Progress bool

	// ProgressOutput is where progress is rendered. Default: os.Stderr
	ProgressOutput io.Writer

	// BaseURL overrides the crawl data store root (for tests).
	BaseURL string

	// CollinfoURL overrides the index listing endpoint (for tests).
	CollinfoURL string

	// HTTP configures the shared HTTP client.
	HTTP cchttp.Options

	// Logger receives diagnostics. Default: a discarding logger.
	Logger *log.Logger
}

// Summary is the final accounting of a run.
type Summary struct {
	progress.Snapshot

	// IndexID is the index that was crawled.
	IndexID string
	// Dest is where the output was written.
	Dest string
	// Interrupted is true when the run was cancelled and the output holds
	// a valid partial result.
	Interrupted bool
}

// Run executes one crawl. It returns an error only for fatal faults
// (catalog unavailable, output write fault); failed shards and malformed
// lines are reflected in the summary instead.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	client := cchttp.NewClient(opts.HTTP)

	indexID := opts.IndexID
	if indexID == "" {
		newest, err := index.Newest(ctx, client, opts.CollinfoURL)
		if err != nil {
			return nil, err
		}
		indexID = newest.ID
		logger.Info("selected newest index", "id", indexID)
	}

	resolver := index.NewResolver(client, index.Options{BaseURL: opts.BaseURL})
	catalog, err := resolver.Resolve(ctx, indexID)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved shard catalog", "index", indexID, "shards", len(catalog.Shards))

	if opts.SizeHints {
		resolver.SizeHints(ctx, catalog)
	}

	stats := progress.NewStats(len(catalog.Shards))
	fetcher := fetch.NewFetcher(client, stats)
	p := pool.New(fetcher, stats, pool.Options{
		Workers:     opts.Workers,
		ChannelSize: opts.ChannelSize,
		Logger:      logger,
	})

	outName := opts.Output
	if outName == "" {
		outName = output.DefaultName(indexID)
	}

	var writer *output.Writer
	if opts.BucketURL != "" {
		writer, err = output.NewBucketWriter(ctx, opts.BucketURL, outName)
	} else {
		writer, err = output.NewFileWriter(outName)
	}
	if err != nil {
		return nil, err
	}

	var reporter *progress.Reporter
	if opts.Progress {
		reporter = progress.NewReporter(stats, progress.Options{
			IndexID:    indexID,
			Workers:    p.Workers(),
			TotalBytes: catalog.TotalSize(),
			Output:     opts.ProgressOutput,
		})
		reporter.Start()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := p.Run(runCtx, catalog.Shards)
	writeErr := writer.Drain(records, stats)
	if writeErr != nil {
		// Unblock producers, then wait for the pool to close the channel
		// so no worker is left sending into the void.
		cancel()
		for range records {
		}
	}

	closeErr := writer.Close()
	if reporter != nil {
		reporter.Stop()
	}

	if writeErr != nil {
		return nil, writeErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	summary := &Summary{
		Snapshot:    stats.Snapshot(),
		IndexID:     indexID,
		Dest:        writer.Dest(),
		Interrupted: ctx.Err() != nil,
	}

	if summary.ShardsFailed > 0 {
		logger.Warn("run completed with failed shards",
			"failed", summary.ShardsFailed,
			"total", summary.TotalShards,
		)
	}

	return summary, nil
}
