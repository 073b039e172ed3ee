package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	a := amortization.LoanTerms{
		Principal:         decimal.RequireFromString("250000.00"),
		AnnualRatePercent: decimal.RequireFromString("5.250"),
		TermYears:         decimal.RequireFromString("30"),
	}
	b := amortization.NewLoanTerms(250000, 5.25, 30)

	assert.Equal(t, Key(a, amortization.ArithmeticDecimal, "json"), Key(b, amortization.ArithmeticDecimal, "json"))
	assert.Equal(t, "loan-calculator:schedule:v1:decimal:250000:5.25:30::json", Key(b, amortization.ArithmeticDecimal, "json"))

	assert.NotEqual(t, Key(b, amortization.ArithmeticDecimal, "json"), Key(b, amortization.ArithmeticFloat, "json"))
	assert.NotEqual(t, Key(b, amortization.ArithmeticDecimal, "json"), Key(b, amortization.ArithmeticDecimal, "csv"))

	withStart := b
	withStart.StartDate = "2025-01"
	assert.NotEqual(t, Key(b, amortization.ArithmeticDecimal, "json"), Key(withStart, amortization.ArithmeticDecimal, "json"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	value := []byte("schedule")
	require.NoError(t, c.Set(ctx, "k", value, time.Minute))
	value[0] = 'X'

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "schedule", string(got))

	got[0] = 'Y'
	again, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "schedule", string(again))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Hour))
	require.NoError(t, c.Set(ctx, "forever", []byte("b"), 0))

	now = now.Add(59 * time.Minute)
	_, ok, _ := c.Get(ctx, "short")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = c.Get(ctx, "short")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	now = now.Add(24 * 365 * time.Hour)
	_, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Ping(ctx))

	// a missing key comes back as redis.Nil and is reported as a miss
	got, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	key := Key(amortization.NewLoanTerms(250000, 5.25, 30), amortization.ArithmeticDecimal, "csv")
	require.NoError(t, c.Set(ctx, key, []byte("\"Period\",\"Payment\"\n"), time.Hour))

	got, ok, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "\"Period\",\"Payment\"\n", string(got))

	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, string(got), stored)
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("b"), 0))
	assert.Equal(t, time.Duration(0), mr.TTL("forever"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", string(got))
}

func TestRedisCacheServerError(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedisCache(t)

	mr.SetError("ERR injected failure")
	_, ok, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	mr.SetError("")
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
}

func TestRedisCacheUnreachable(t *testing.T) {
	c := NewRedisCache("127.0.0.1:1", "", 0)
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	_, ok, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "k", []byte("v"), time.Minute))
}

var _ Cache = (*RedisCache)(nil)
var _ Cache = (*MemoryCache)(nil)
