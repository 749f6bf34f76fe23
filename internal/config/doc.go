// Package config defines configuration structures for the ccmap CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (CCMAP_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    Index       string
//	    Output      string
//	    Bucket      string
//	    Workers     int
//	    ChannelSize int
//	    SizeHints   bool
//	    Progress    bool
//	    Timeout     time.Duration
//	    Retry       RetryConfig
//	}
//
//	type RetryConfig struct {
//	    Attempts   int
//	    Backoff    time.Duration
//	    MaxBackoff time.Duration
//	}
package config
