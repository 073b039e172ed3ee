// Package cache memoizes rendered schedules keyed by their inputs.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "loan-calculator:schedule:v1"

// Cache stores opaque values with an expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key returns the cache key for one calculation. Equal amounts with different
// trailing zeros share a key.
func Key(terms amortization.LoanTerms, arithmetic amortization.Arithmetic, variant string) string {
	parts := []string{
		keyPrefix,
		string(arithmetic),
		terms.Principal.String(),
		terms.AnnualRatePercent.String(),
		terms.TermYears.String(),
		terms.StartDate,
		variant,
	}
	return strings.Join(parts, ":")
}

// RedisCache stores values in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a cache backed by the Redis server at addr.
func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb}
}

// Get returns the cached value; a missing key is not an error.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process Cache. Expired entries are dropped on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Set stores a copy of value. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries, including expired ones not yet read.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
