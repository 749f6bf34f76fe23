package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/klauspost/compress/gzip"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
)

func runCluster(args []string) int {
	fs := flag.NewFlagSet("cluster", flag.ExitOnError)

	indexID := fs.String("index", "", "Index whose cluster.idx to dump (default: newest published)")
	outputPath := fs.String("output", "", "Output file path (default: cluster-idx-<index>.csv.gz)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: ccmap cluster [options]

Dump an index's cluster.idx host pointers to a gzip'd CSV, one
host,timestamp,shard,offset,length row per pointer. Pointers keyed by a
bare IP address are skipped.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
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

	client := cchttp.NewClient(cchttp.DefaultOptions())

	id := *indexID
	if id == "" {
		newest, err := index.Newest(ctx, client, "")
		if err != nil {
			logger.Error("list indexes", "err", err)
			return ExitCatalogUnavailable
		}
		id = newest.ID
	}

	resolver := index.NewResolver(client, index.Options{})
	catalog, err := resolver.Resolve(ctx, id)
	if err != nil {
		logger.Error("resolve catalog", "err", err)
		if errors.Is(err, index.ErrCatalogUnavailable) {
			return ExitCatalogUnavailable
		}
		return ExitGeneralError
	}

	outName := *outputPath
	if outName == "" {
		outName = fmt.Sprintf("cluster-idx-%s.csv.gz", strings.ToLower(id))
	}

	f, err := os.Create(outName)
	if err != nil {
		logger.Error("create output", "err", err)
		return ExitOutputError
	}

	gz := gzip.NewWriter(f)
	w := bufio.NewWriterSize(gz, 128*1024)

	var pointers int
	skipped, err := index.ReadClusterIdx(ctx, client, "", catalog, func(p index.HostPointer) error {
		pointers++
		_, werr := fmt.Fprintln(w, p.CSV())
		return werr
	})

	if ferr := flushAll(w, gz, f); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		logger.Error("dump cluster.idx", "err", err)
		return ExitGeneralError
	}

	logger.Info("cluster.idx dumped", "dest", outName, "pointers", pointers, "skipped", skipped)
	return ExitSuccess
}

func flushAll(w *bufio.Writer, gz *gzip.Writer, f *os.File) error {
	if err := w.Flush(); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	return f.Close()
}
