// Package pool runs the fan-out/fan-in stage of the pipeline: a fixed
// number of workers claim shards from a shared queue, stream-extract
// records from each, and funnel them into one bounded output channel.
//
// # Worker Pool
//
// Workers receive shard descriptors from a channel, open the fetcher's
// decompressed stream, and push every extracted record into the output
// channel. The channel is bounded, so a slow consumer throttles the
// workers instead of letting memory grow.
//
// Failure is isolated per shard: a shard whose fetch fails, or whose
// stream breaks mid-read, is counted as failed and the worker moves on.
// Only after every worker has exited is the output channel closed, which
// is how the consumer detects end-of-stream.
//
// # Graceful Shutdown
//
// Cancelling the context stops the queue feeder, unblocks any worker
// waiting on the full output channel, and lets the pool wind down without
// losing records that were already delivered.
package pool
