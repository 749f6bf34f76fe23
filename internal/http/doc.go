// Package http provides the HTTP client used to reach the crawl data store.
//
// This package handles:
//   - Connection pooling for high parallelism
//   - Retry with jittered exponential backoff for transient faults
//     (network errors, 5xx responses)
//   - Immediate failure for permanent faults (404, 403, 401)
//   - HEAD requests for shard size hints
//
// # Usage
//
//	client := http.NewClient(Options{
//	    Timeout:       60 * time.Second,
//	    RetryAttempts: 3,
//	})
//
//	body, err := client.Get(ctx, url)
//	defer body.Close()
package http
