package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address == "" {
		t.Fatalf("expected default address, got empty")
	}
	if cfg.BodySizeBytes() <= 0 {
		t.Fatalf("expected positive default max body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.Cache.Backend != CacheBackendMemory {
		t.Fatalf("expected memory cache by default, got %s", cfg.Cache.Backend)
	}
	if cfg.CacheTTL() != constants.DefaultCacheTTL {
		t.Fatalf("expected default cache ttl, got %s", cfg.CacheTTL())
	}
	if cfg.Jobs.Workers != constants.DefaultJobWorkers || cfg.Jobs.QueueSize != constants.DefaultJobQueueSize {
		t.Fatalf("expected default jobs config, got %+v", cfg.Jobs)
	}
	if cfg.JobRetention() != constants.DefaultJobRetention {
		t.Fatalf("expected default job retention, got %s", cfg.JobRetention())
	}
	if cfg.Arithmetic != constants.ArithmeticDecimal {
		t.Fatalf("expected decimal arithmetic, got %s", cfg.Arithmetic)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 2M
arithmetic: FLOAT
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
cache:
  backend: redis
  address: localhost:6379
  db: 2
  ttl: 90m
jobs:
  workers: 8
  queueSize: 16
  retention: 30m
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max body size override, got %d", cfg.BodySizeBytes())
	}
	if cfg.Arithmetic != "float" {
		t.Fatalf("expected float arithmetic, got %s", cfg.Arithmetic)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
	if cfg.Cache.Backend != CacheBackendRedis || cfg.Cache.Address != "localhost:6379" || cfg.Cache.DB != 2 {
		t.Fatalf("expected redis cache override, got %+v", cfg.Cache)
	}
	if cfg.CacheTTL() != 90*time.Minute {
		t.Fatalf("expected cache ttl 90m, got %s", cfg.CacheTTL())
	}
	if cfg.Jobs.Workers != 8 || cfg.Jobs.QueueSize != 16 {
		t.Fatalf("expected jobs override, got %+v", cfg.Jobs)
	}
	if cfg.JobRetention() != 30*time.Minute {
		t.Fatalf("expected job retention 30m, got %s", cfg.JobRetention())
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"size":             "maxBodySize: invalid",
		"yaml":             "address: [",
		"arithmetic":       "arithmetic: bignum",
		"cache backend":    "cache:\n  backend: memcached",
		"redis no address": "cache:\n  backend: redis",
		"cache ttl":        "cache:\n  ttl: forever",
		"job retention":    "jobs:\n  retention: soon",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error for invalid config but got nil")
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxBodySizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("parseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("parseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1TB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
}
