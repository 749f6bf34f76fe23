// Package mapper orchestrates one end-to-end crawl of an index: resolve
// the shard catalog, fan shards out across the worker pool, drain the
// record channel into the compressed output, and report progress.
//
// # Usage
//
//	summary, err := mapper.Run(ctx, mapper.Options{
//	    IndexID: "CC-MAIN-2020-50",
//	    Output:  "mapping-cc-main-2020-50.csv.gz",
//	    Workers: 8,
//	})
//
// # Failure policy
//
// Only two faults abort a run: an unavailable shard catalog (before any
// work starts, so no output file is created) and a write-level output
// fault (flushed rows are kept). Shard-level and line-level faults degrade
// the completeness of the result, never its availability, and show up in
// the summary counters.
package mapper
