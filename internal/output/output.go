package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gocloud.dev/blob"

	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/extract"
	"github.com/CAIDA/commoncrawl-host-ip-mapper/internal/progress"
)

// OutputWriteError reports a write-level fault (disk full, permission,
// storage error). It aborts the run; already-flushed rows are kept.
type OutputWriteError struct {
	Dest string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("write output %s: %v", e.Dest, e.Err)
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

// DefaultName returns the default output file name for an index,
// mapping-<id>.csv.gz.
func DefaultName(indexID string) string {
	return fmt.Sprintf("mapping-%s.csv.gz", strings.ToLower(indexID))
}

// Writer writes records as gzip'd CSV rows. Not safe for concurrent use;
// it is meant to be the single consumer of the record channel.
type Writer struct {
	dest   string
	csv    *csv.Writer
	gz     *gzip.Writer
	sink   io.WriteCloser
	bucket *blob.Bucket // closed with the writer when set
	closed bool
}

// NewFileWriter creates a writer to a local file at path.
func NewFileWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &OutputWriteError{Dest: path, Err: err}
	}
	return newWriter(path, f, nil), nil
}

// NewBucketWriter creates a writer to key in the bucket at bucketURL
// (any scheme registered with gocloud.dev/blob, e.g. s3:// or file://).
func NewBucketWriter(ctx context.Context, bucketURL, key string) (*Writer, error) {
	dest := bucketURL + "/" + key

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, &OutputWriteError{Dest: dest, Err: err}
	}

	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, &OutputWriteError{Dest: dest, Err: err}
	}

	writer := newWriter(dest, w, bucket)
	return writer, nil
}

func newWriter(dest string, sink io.WriteCloser, bucket *blob.Bucket) *Writer {
	gz := gzip.NewWriter(sink)
	return &Writer{
		dest:   dest,
		csv:    csv.NewWriter(gz),
		gz:     gz,
		sink:   sink,
		bucket: bucket,
	}
}

// Dest returns the destination the writer serializes to.
func (w *Writer) Dest() string { return w.dest }

// Write serializes one record as a host,date,ip row.
func (w *Writer) Write(rec extract.Record) error {
	if w.closed {
		return &OutputWriteError{Dest: w.dest, Err: fmt.Errorf("writer is closed")}
	}
	if err := w.csv.Write([]string{rec.Host, rec.Date, rec.IP}); err != nil {
		return &OutputWriteError{Dest: w.dest, Err: err}
	}
	return nil
}

// Drain consumes records until the channel is closed, counting each
// written row. It returns early on the first write fault; the caller is
// expected to cancel the producers and still Close the writer so flushed
// rows survive.
func (w *Writer) Drain(records <-chan extract.Record, stats *progress.Stats) error {
	for rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
		stats.RecordWritten()
	}
	return nil
}

// Close flushes and closes the output exactly once. Safe to call more
// than once; later calls are no-ops.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.csv.Flush()
	err := w.csv.Error()

	if cerr := w.gz.Close(); err == nil {
		err = cerr
	}
	if cerr := w.sink.Close(); err == nil {
		err = cerr
	}
	if w.bucket != nil {
		if cerr := w.bucket.Close(); err == nil {
			err = cerr
		}
	}

	if err != nil {
		return &OutputWriteError{Dest: w.dest, Err: err}
	}
	return nil
}
