package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Workers != 8 {
		t.Errorf("expected default workers 8, got %d", cfg.Workers)
	}
	if cfg.ChannelSize != 1024 {
		t.Errorf("expected default channel size 1024, got %d", cfg.ChannelSize)
	}
	if !cfg.Progress {
		t.Error("expected progress enabled by default")
	}
	if cfg.SizeHints {
		t.Error("expected size hints disabled by default")
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("expected default retry attempts 3, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != time.Second {
		t.Errorf("expected default retry backoff 1s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 30*time.Second {
		t.Errorf("expected default retry max backoff 30s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
index: CC-MAIN-2020-50
output: /tmp/mapping.csv.gz
workers: 32
channel_size: 4096
size_hints: true
progress: false
timeout: 90s
retry:
  attempts: 10
  backoff: 2s
  max_backoff: 60s
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Index != "CC-MAIN-2020-50" {
		t.Errorf("expected index CC-MAIN-2020-50, got %s", cfg.Index)
	}
	if cfg.Output != "/tmp/mapping.csv.gz" {
		t.Errorf("expected output /tmp/mapping.csv.gz, got %s", cfg.Output)
	}
	if cfg.Workers != 32 {
		t.Errorf("expected workers 32, got %d", cfg.Workers)
	}
	if cfg.ChannelSize != 4096 {
		t.Errorf("expected channel size 4096, got %d", cfg.ChannelSize)
	}
	if !cfg.SizeHints {
		t.Error("expected size hints true")
	}
	if cfg.Progress {
		t.Error("expected progress false")
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("expected timeout 90s, got %v", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 10 {
		t.Errorf("expected retry attempts 10, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 2*time.Second {
		t.Errorf("expected retry backoff 2s, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 60*time.Second {
		t.Errorf("expected retry max backoff 60s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromYAMLPartial(t *testing.T) {
	// Fields not present keep their defaults.
	yamlContent := "workers: 4\n"

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Workers)
	}
	if cfg.ChannelSize != 1024 {
		t.Errorf("expected default channel size kept, got %d", cfg.ChannelSize)
	}
	if !cfg.Progress {
		t.Error("expected default progress kept")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CCMAP_INDEX", "CC-MAIN-2021-04")
	t.Setenv("CCMAP_WORKERS", "64")
	t.Setenv("CCMAP_CHANNEL_SIZE", "2048")
	t.Setenv("CCMAP_SIZE_HINTS", "true")
	t.Setenv("CCMAP_PROGRESS", "false")
	t.Setenv("CCMAP_TIMEOUT", "2m")
	t.Setenv("CCMAP_RETRY_ATTEMPTS", "5")
	t.Setenv("CCMAP_RETRY_BACKOFF", "500ms")
	t.Setenv("CCMAP_RETRY_MAX_BACKOFF", "10s")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}

	if cfg.Index != "CC-MAIN-2021-04" {
		t.Errorf("expected index CC-MAIN-2021-04, got %s", cfg.Index)
	}
	if cfg.Workers != 64 {
		t.Errorf("expected workers 64, got %d", cfg.Workers)
	}
	if cfg.ChannelSize != 2048 {
		t.Errorf("expected channel size 2048, got %d", cfg.ChannelSize)
	}
	if !cfg.SizeHints {
		t.Error("expected size hints true")
	}
	if cfg.Progress {
		t.Error("expected progress false")
	}
	if cfg.Timeout != 2*time.Minute {
		t.Errorf("expected timeout 2m, got %v", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 5 {
		t.Errorf("expected retry attempts 5, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff != 500*time.Millisecond {
		t.Errorf("expected retry backoff 500ms, got %v", cfg.Retry.Backoff)
	}
	if cfg.Retry.MaxBackoff != 10*time.Second {
		t.Errorf("expected retry max backoff 10s, got %v", cfg.Retry.MaxBackoff)
	}
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("CCMAP_WORKERS", "not-a-number")

	cfg := Default()
	if err := cfg.LoadFromEnv(); err == nil {
		t.Error("expected error for invalid CCMAP_WORKERS")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(*Config) {}, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"zero channel size", func(c *Config) { c.ChannelSize = 0 }, true},
		{"negative retry attempts", func(c *Config) { c.Retry.Attempts = -1 }, true},
		{"zero retry attempts", func(c *Config) { c.Retry.Attempts = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := Default()
	base.Index = "CC-MAIN-2020-50"

	override := Config{
		Workers: 32,
		Output:  "custom.csv.gz",
		// Leave other fields at zero values
	}

	merged := base.Merge(override)

	// Base values survive where the override is zero.
	if merged.Index != "CC-MAIN-2020-50" {
		t.Errorf("expected Index preserved, got %s", merged.Index)
	}
	if merged.ChannelSize != 1024 {
		t.Errorf("expected ChannelSize preserved, got %d", merged.ChannelSize)
	}
	if merged.Timeout != 60*time.Second {
		t.Errorf("expected Timeout preserved, got %v", merged.Timeout)
	}

	// Override values win where set.
	if merged.Workers != 32 {
		t.Errorf("expected Workers overridden to 32, got %d", merged.Workers)
	}
	if merged.Output != "custom.csv.gz" {
		t.Errorf("expected Output overridden, got %s", merged.Output)
	}
}

func TestLoadYAMLFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}
