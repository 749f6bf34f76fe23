package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	cchttp "github.com/CAIDA/commoncrawl-host-ip-mapper/internal/http"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/index"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/progress"
)

// ShardFetchError reports that a shard could not be opened or streamed.
type ShardFetchError struct {
	Shard index.Shard
	Err   error
}

func (e *ShardFetchError) Error() string {
	return fmt.Sprintf("fetch shard %s: %v", e.Shard.URL, e.Err)
}

func (e *ShardFetchError) Unwrap() error { return e.Err }

// Permanent reports whether retrying the shard cannot help.
func (e *ShardFetchError) Permanent() bool { return cchttp.IsPermanent(e.Err) }

// Fetcher opens streaming reads over shard content.
type Fetcher struct {
	client *cchttp.Client
	stats  *progress.Stats
}

// NewFetcher creates a fetcher. stats may be nil, in which case transfer
// bytes are not counted.
func NewFetcher(client *cchttp.Client, stats *progress.Stats) *Fetcher {
	return &Fetcher{client: client, stats: stats}
}

// Open returns a streaming reader over the decompressed content of shard.
// The caller must close it. Fetch and decompression-framing faults are
// returned as *ShardFetchError.
func (f *Fetcher) Open(ctx context.Context, shard index.Shard) (io.ReadCloser, error) {
	body, err := f.client.Get(ctx, shard.URL)
	if err != nil {
		return nil, &ShardFetchError{Shard: shard, Err: err}
	}

	counted := &countingReader{r: body, stats: f.stats}
	gz, err := gzip.NewReader(counted)
	if err != nil {
		body.Close()
		return nil, &ShardFetchError{Shard: shard, Err: fmt.Errorf("gzip: %w", err)}
	}

	return &shardReader{gz: gz, body: body}, nil
}

// shardReader streams decompressed shard content and closes both layers.
type shardReader struct {
	gz   *gzip.Reader
	body io.ReadCloser
}

func (r *shardReader) Read(p []byte) (int, error) {
	return r.gz.Read(p)
}

func (r *shardReader) Close() error {
	err := r.gz.Close()
	if cerr := r.body.Close(); err == nil {
		err = cerr
	}
	return err
}

// countingReader counts network bytes into the run stats as they are
// pulled, not all at once.
type countingReader struct {
	r     io.Reader
	stats *progress.Stats
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.stats != nil {
		c.stats.AddBytes(int64(n))
	}
	return n, err
}
