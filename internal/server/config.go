package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Cache backends
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address       string               `yaml:"address"`
	MaxBodySize   string               `yaml:"maxBodySize"`
	Arithmetic    string               `yaml:"arithmetic"`
	Logging       config.LoggingConfig `yaml:"logging"`
	Cache         CacheConfig          `yaml:"cache"`
	Jobs          JobsConfig           `yaml:"jobs"`
	bodySizeBytes int64
}

// CacheConfig selects where computed schedules are memoized.
type CacheConfig struct {
	Backend  string `yaml:"backend"` // none, memory, redis
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"` // Go duration, e.g. 24h
	ttl      time.Duration
}

// JobsConfig sizes the background calculation pool.
type JobsConfig struct {
	Workers   int    `yaml:"workers"`
	QueueSize int    `yaml:"queueSize"`
	Retention string `yaml:"retention"` // how long finished jobs stay queryable, e.g. 1h
	retention time.Duration
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Address:       constants.DefaultServerAddress,
		MaxBodySize:   fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes),
		Arithmetic:    constants.ArithmeticDecimal,
		Logging:       config.LoggingConfig{},
		bodySizeBytes: constants.DefaultMaxBodySizeBytes,
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			TTL:     constants.DefaultCacheTTL.String(),
			ttl:     constants.DefaultCacheTTL,
		},
		Jobs: JobsConfig{
			Workers:   constants.DefaultJobWorkers,
			QueueSize: constants.DefaultJobQueueSize,
			Retention: constants.DefaultJobRetention.String(),
			retention: constants.DefaultJobRetention,
		},
	}
}

// BodySizeBytes returns the configured request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// SetBodySizeBytes overrides the configured request body limit.
func (c *Config) SetBodySizeBytes(size int64) {
	if size > 0 {
		c.bodySizeBytes = size
		c.MaxBodySize = fmt.Sprintf("%d", size)
	}
}

// CacheTTL returns how long computed schedules stay cached.
func (c *Config) CacheTTL() time.Duration {
	return c.Cache.ttl
}

// JobRetention returns how long finished background jobs are kept.
func (c *Config) JobRetention() time.Duration {
	return c.Jobs.retention
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	if err := validation.ValidateArithmetic(c.Arithmetic); err != nil {
		return err
	}
	arithmetic, _ := amortization.ParseArithmetic(c.Arithmetic)
	c.Arithmetic = string(arithmetic)

	if err := c.Cache.normalize(); err != nil {
		return err
	}

	if err := c.Jobs.normalize(); err != nil {
		return err
	}

	sizeStr := strings.TrimSpace(c.MaxBodySize)
	if sizeStr == "" {
		c.bodySizeBytes = constants.DefaultMaxBodySizeBytes
		c.MaxBodySize = fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes)
		return nil
	}

	bytes, err := ParseSize(sizeStr)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes
	return nil
}

func (c *CacheConfig) normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = CacheBackendMemory
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Address == "" {
			return errors.New("cache backend redis requires an address")
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Backend)
	}

	if strings.TrimSpace(c.TTL) == "" {
		c.ttl = constants.DefaultCacheTTL
		c.TTL = c.ttl.String()
		return nil
	}
	ttl, err := time.ParseDuration(strings.TrimSpace(c.TTL))
	if err != nil {
		return fmt.Errorf("invalid cache ttl %q: %w", c.TTL, err)
	}
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	c.ttl = ttl
	return nil
}

func (j *JobsConfig) normalize() error {
	if j.Workers <= 0 {
		j.Workers = constants.DefaultJobWorkers
	}
	if j.QueueSize <= 0 {
		j.QueueSize = constants.DefaultJobQueueSize
	}

	if strings.TrimSpace(j.Retention) == "" {
		j.retention = constants.DefaultJobRetention
		j.Retention = j.retention.String()
		return nil
	}
	retention, err := time.ParseDuration(strings.TrimSpace(j.Retention))
	if err != nil {
		return fmt.Errorf("invalid jobs retention %q: %w", j.Retention, err)
	}
	if retention <= 0 {
		retention = constants.DefaultJobRetention
	}
	j.retention = retention
	return nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
