package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the ccmap CLI.
type Config struct {
	Index       string        `yaml:"index"`
	Output      string        `yaml:"output"`
	Bucket      string        `yaml:"bucket"`
	Workers     int           `yaml:"workers"`
	ChannelSize int           `yaml:"channel_size"`
	SizeHints   bool          `yaml:"size_hints"`
	Progress    bool          `yaml:"progress"`
	Timeout     time.Duration `yaml:"timeout"`
	Retry       RetryConfig   `yaml:"retry"`
}

// RetryConfig defines retry behavior for shard fetches.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:     8,
		ChannelSize: 1024,
		Progress:    true,
		Timeout:     60 * time.Second,
		Retry: RetryConfig{
			Attempts:   3,
			Backoff:    time.Second,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Index       string          `yaml:"index"`
	Output      string          `yaml:"output"`
	Bucket      string          `yaml:"bucket"`
	Workers     int             `yaml:"workers"`
	ChannelSize int             `yaml:"channel_size"`
	SizeHints   *bool           `yaml:"size_hints"`
	Progress    *bool           `yaml:"progress"`
	Timeout     string          `yaml:"timeout"`
	Retry       yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Index != "" {
		cfg.Index = yc.Index
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	if yc.Bucket != "" {
		cfg.Bucket = yc.Bucket
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.ChannelSize != 0 {
		cfg.ChannelSize = yc.ChannelSize
	}
	if yc.SizeHints != nil {
		cfg.SizeHints = *yc.SizeHints
	}
	if yc.Progress != nil {
		cfg.Progress = *yc.Progress
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the CCMAP_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("CCMAP_INDEX"); v != "" {
		c.Index = v
	}
	if v := os.Getenv("CCMAP_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("CCMAP_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("CCMAP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse CCMAP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("CCMAP_CHANNEL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse CCMAP_CHANNEL_SIZE: %w", err)
		}
		c.ChannelSize = n
	}
	if v := os.Getenv("CCMAP_SIZE_HINTS"); v != "" {
		c.SizeHints = v == "true" || v == "1"
	}
	if v := os.Getenv("CCMAP_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("CCMAP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CCMAP_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("CCMAP_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse CCMAP_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("CCMAP_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CCMAP_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("CCMAP_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse CCMAP_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.ChannelSize <= 0 {
		return errors.New("config: channel_size must be positive")
	}
	if c.Retry.Attempts < 0 {
		return errors.New("config: retry.attempts must not be negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Index != "" {
		c.Index = override.Index
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Bucket != "" {
		c.Bucket = override.Bucket
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.ChannelSize != 0 {
		c.ChannelSize = override.ChannelSize
	}
	if override.SizeHints {
		c.SizeHints = override.SizeHints
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}
