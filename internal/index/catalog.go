package index

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
)

// ErrCatalogUnavailable is returned when the shard catalog for an index
// cannot be retrieved or is structurally invalid. It is fatal to a run.
var ErrCatalogUnavailable = errors.New("index: catalog unavailable")

// Shard describes one retrievable cdx shard of an index. Immutable once
// produced by the resolver.
type Shard struct {
	// URL is the absolute location of the gzip'd shard file.
	URL string
	// Size is the expected compressed size in bytes, if known. Zero means
	// unknown; it is only used for progress weighting.
	Size int64
}

// Catalog is the resolved shard listing for one index.
type Catalog struct {
	IndexID string
	// Shards in the order the paths file lists them.
	Shards []Shard
	// ClusterIdxURL locates the cluster.idx file, if the index has one.
	ClusterIdxURL string
	// MetadataURL locates the metadata.yaml file, if the index has one.
	MetadataURL string
}

// TotalSize returns the sum of known shard sizes, or 0 if no shard carries
// a size hint.
func (c *Catalog) TotalSize() int64 {
	var total int64
	for _, s := range c.Shards {
		total += s.Size
	}
	return total
}

// Options configures a Resolver.
type Options struct {
	// BaseURL is the crawl data store root.
	// Default: DefaultBaseURL
	BaseURL string

	// SizeHintWorkers is the number of parallel HEAD requests used by
	// SizeHints. Default: 8
	SizeHintWorkers int
}

// Resolver turns an index identifier into its shard catalog by reading the
// index's cc-index.paths.gz listing.
type Resolver struct {
	client *cchttp.Client
	opts   Options
}

// NewResolver creates a resolver using the given client.
func NewResolver(client *cchttp.Client, opts Options) *Resolver {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.SizeHintWorkers <= 0 {
		opts.SizeHintWorkers = 8
	}
	return &Resolver{client: client, opts: opts}
}

// Resolve fetches and parses the shard catalog for indexID. Any fetch or
// parse problem, including an empty shard list, is reported as
// ErrCatalogUnavailable.
func (r *Resolver) Resolve(ctx context.Context, indexID string) (*Catalog, error) {
	pathsURL := fmt.Sprintf("%s/crawl-data/%s/cc-index.paths.gz", r.opts.BaseURL, indexID)

	body, err := r.client.Get(ctx, pathsURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrCatalogUnavailable, pathsURL, err)
	}
	defer body.Close()

	gz, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress paths listing: %v", ErrCatalogUnavailable, err)
	}
	defer gz.Close()

	catalog := &Catalog{IndexID: indexID}

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		url := r.opts.BaseURL + "/" + line
		switch name := line[strings.LastIndex(line, "/")+1:]; name {
		case "cluster.idx":
			catalog.ClusterIdxURL = url
		case "metadata.yaml":
			catalog.MetadataURL = url
		default:
			catalog.Shards = append(catalog.Shards, Shard{URL: url})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read paths listing: %v", ErrCatalogUnavailable, err)
	}

	if len(catalog.Shards) == 0 {
		return nil, fmt.Errorf("%w: index %s lists no shards", ErrCatalogUnavailable, indexID)
	}

	return catalog, nil
}

// SizeHints fills in the Size of every shard in the catalog with the
// Content-Length reported by a HEAD request. Shards whose HEAD fails keep
// size 0; hints are best-effort and only affect progress display.
func (r *Resolver) SizeHints(ctx context.Context, catalog *Catalog) {
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.opts.SizeHintWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				info, err := r.client.Head(ctx, catalog.Shards[i].URL)
				if err != nil || info.Size < 0 {
					continue
				}
				catalog.Shards[i].Size = info.Size
			}
		}()
	}

	for i := range catalog.Shards {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
