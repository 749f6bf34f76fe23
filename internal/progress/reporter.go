package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// IndexID is the index being crawled (for display).
	IndexID string

	// Workers is the number of parallel workers (for display).
	Workers int

	// TotalBytes is the expected transfer size, if size hints were
	// gathered. Zero means unknown.
	TotalBytes int64

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration
}

// Reporter periodically renders a snapshot of a Stats value. It never
// mutates the counters.
type Reporter struct {
	stats *Stats
	opts  Options

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
	lastBytes  int64
	stopCh     chan struct{}
	doneCh     chan struct{}
	stopped    bool
}

// NewReporter creates a reporter over stats.
func NewReporter(stats *Stats, opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		stats:  stats,
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	r.lastUpdate = r.startTime

	fmt.Fprintf(r.opts.Output, "[ccmap] Crawling index: %s\n", r.opts.IndexID)
	fmt.Fprintf(r.opts.Output, "[ccmap] Shards: %d | Workers: %d\n",
		r.stats.TotalShards(),
		r.opts.Workers,
	)

	go r.updateLoop()
}

// Stop stops the reporter and prints the final summary. It blocks until the
// summary has been written. Safe to call more than once.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			close(r.doneCh)
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

func (r *Reporter) printProgress() {
	now := time.Now()
	snap := r.stats.Snapshot()

	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed < 0.1 {
		elapsed = 0.1
	}
	speed := float64(snap.BytesDownloaded-r.lastBytes) / elapsed

	r.lastUpdate = now
	r.lastBytes = snap.BytesDownloaded

	downloaded := formatBytes(snap.BytesDownloaded)
	if r.opts.TotalBytes > 0 {
		downloaded = fmt.Sprintf("%s / %s", downloaded, formatBytes(r.opts.TotalBytes))
	}

	fmt.Fprintf(r.opts.Output, "\r[ccmap] Shards: %d/%d (%d failed) | Records: %d | Failures: %d | Downloaded: %s | Speed: %s/s    ",
		snap.ShardsCompleted+snap.ShardsFailed,
		snap.TotalShards,
		snap.ShardsFailed,
		snap.RecordsWritten,
		snap.ParseFailures,
		downloaded,
		formatBytes(int64(speed)),
	)
}

func (r *Reporter) printFinalStatus() {
	snap := r.stats.Snapshot()
	duration := time.Since(r.startTime)
	avgSpeed := float64(snap.BytesDownloaded) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[ccmap] Shards: %d/%d completed | %d failed | %d records | %d parse failures    \n",
		snap.ShardsCompleted,
		snap.TotalShards,
		snap.ShardsFailed,
		snap.RecordsWritten,
		snap.ParseFailures,
	)
	fmt.Fprintf(r.opts.Output, "[ccmap] Downloaded: %s | Total time: %s | Average speed: %s/s\n",
		formatBytes(snap.BytesDownloaded),
		formatDuration(duration),
		formatBytes(int64(avgSpeed)),
	)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case b >= TB:
		return fmt.Sprintf("%.2f TB", float64(b)/float64(TB))
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatBytes is exported for use by other packages.
func FormatBytes(b int64) string {
	return formatBytes(b)
}
