// Package cache provides the analysis-result cache, Redis-backed with an
// in-process fallback.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bobmcallan/flowlens/internal/common"
	"github.com/bobmcallan/flowlens/internal/interfaces"
)

// New returns a Redis-backed cache when the configured URL parses and the
// server answers a ping, otherwise an in-process cache.
func New(logger *common.Logger, config *common.Config) interfaces.Cache {
	url := config.Cache.RedisURL
	if url == "" {
		logger.Info().Msg("No Redis URL configured, using in-process cache")
		return NewMemoryCache()
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid Redis URL, using in-process cache")
		return NewMemoryCache()
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opt.Addr).Msg("Redis unreachable, using in-process cache")
		client.Close()
		return NewMemoryCache()
	}

	logger.Info().Str("addr", opt.Addr).Msg("Redis cache initialized")
	return &RedisCache{client: client}
}

// RedisCache backs the cache with a Redis server.
type RedisCache struct {
	client *redis.Client
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// MemoryCache is the in-process fallback. Expired entries are dropped
// lazily on read.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memItem
}

type memItem struct {
	val []byte
	exp time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memItem)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		delete(m.items, key)
		return nil, false
	}
	return it.val, true
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.items[key] = memItem{val: val, exp: exp}
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryCache) Close() error {
	return nil
}

// Compile-time checks
var (
	_ interfaces.Cache = (*RedisCache)(nil)
	_ interfaces.Cache = (*MemoryCache)(nil)
)
