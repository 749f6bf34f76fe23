// Package output serializes extracted records into a gzip-compressed CSV.
//
// One Writer is the single consumer of the pool's record channel. Rows are
// written as they arrive (host,date,ip — no header, no dedup, no sorting);
// field values containing the delimiter are quoted by the csv encoder.
//
// The destination is either a local file or an object in a
// gocloud.dev/blob bucket. Write-level faults are fatal to the run and
// surface as *OutputWriteError; data flushed before the fault stays on
// disk.
package output
