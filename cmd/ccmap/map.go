package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/config"
	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/mapper"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/output"
)

func runMap(args []string) int {
	fs := flag.NewFlagSet("map", flag.ExitOnError)

	configPath := fs.String("config", "", "Path to YAML config file")
	indexID := fs.String("index", "", "Index to crawl (default: newest published)")
	outputPath := fs.String("output", "", "Output file path (default: mapping-<index>.csv.gz)")
	bucket := fs.String("bucket", "", "Write output to this bucket URL instead of the local filesystem")
	workers := fs.Int("workers", 0, "Number of parallel shard workers")
	channelSize := fs.Int("channel-size", 0, "Record channel capacity")
	sizeHints := fs.Bool("size-hints", false, "Gather shard sizes up front for progress weighting")
	noProgress := fs.Bool("no-progress", false, "Disable the live progress display")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: ccmap map [options]

Crawl every cdx shard of a CommonCrawl index and write one host,date,ip
row per index entry to a gzip'd CSV. Shards that permanently fail to fetch
are skipped and reported in the final summary.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if *configPath != "" {
		fileCfg, err := config.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	cfg = cfg.Merge(config.Config{
		Index:       *indexID,
		Output:      *outputPath,
		Bucket:      *bucket,
		Workers:     *workers,
		ChannelSize: *channelSize,
		SizeHints:   *sizeHints,
	})
	if *noProgress {
		cfg.Progress = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	logger := newLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("received interrupt, shutting down")
		cancel()
	}()

	summary, err := mapper.Run(ctx, mapper.Options{
		IndexID:     cfg.Index,
		Output:      cfg.Output,
		BucketURL:   cfg.Bucket,
		Workers:     cfg.Workers,
		ChannelSize: cfg.ChannelSize,
		SizeHints:   cfg.SizeHints,
		Progress:    cfg.Progress,
		HTTP: cchttp.Options{
			Timeout:         cfg.Timeout,
			RetryAttempts:   cfg.Retry.Attempts,
			RetryBackoff:    cfg.Retry.Backoff,
			RetryMaxBackoff: cfg.Retry.MaxBackoff,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("run failed", "err", err)
		switch {
		case errors.Is(err, index.ErrCatalogUnavailable):
			return ExitCatalogUnavailable
		case isOutputError(err):
			return ExitOutputError
		default:
			return ExitGeneralError
		}
	}

	logger.Info("mapping written",
		"dest", summary.Dest,
		"records", summary.RecordsWritten,
		"parse_failures", summary.ParseFailures,
		"failed_shards", summary.ShardsFailed,
	)

	if summary.Interrupted {
		logger.Warn("run was interrupted; output holds a partial result")
		return ExitInterrupted
	}
	return ExitSuccess
}

func isOutputError(err error) bool {
	var oe *output.OutputWriteError
	return errors.As(err, &oe)
}

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "ccmap",
	})
}
