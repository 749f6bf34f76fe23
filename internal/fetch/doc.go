// Package fetch opens streaming decompressed readers over remote cdx
// shards.
//
// The fetcher never buffers a shard in memory: the gzip stream is decoded
// as the response body arrives, and every network byte is counted into the
// run's stats as it is pulled, so progress reflects in-flight transfer.
//
// Retry for transient faults (network errors, 5xx responses) lives in the
// HTTP client; permanent faults (404 and friends) fail immediately. Either
// way an exhausted fetch surfaces as a *ShardFetchError, which the worker
// pool treats as a failed shard rather than a failed run.
package fetch
