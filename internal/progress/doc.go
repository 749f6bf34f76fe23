// Package progress provides run statistics and progress reporting for a
// crawl of one index.
//
// Stats is a set of atomic counters shared by the worker pool and the
// output writer. The Reporter only ever reads them.
//
// # Usage
//
//	stats := progress.NewStats(totalShards)
//
//	reporter := progress.NewReporter(stats, progress.Options{
//	    IndexID: "CC-MAIN-2020-50",
//	    Output:  os.Stderr,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Workers and the writer update stats as they go
//	stats.ShardCompleted()
//	stats.AddBytes(n)
//
// # Output Format
//
//	[ccmap] Crawling index: CC-MAIN-2020-50
//	[ccmap] Shards: 300 | Workers: 8
//	[ccmap] Shards: 120/300 (2 failed) | Records: 1402311 | Failures: 96 | Downloaded: 1.20 GB | Speed: 14.51 MB/s
package progress
