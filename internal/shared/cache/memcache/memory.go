// Package memcache is the in-process cache used when no Redis URL is configured.
package memcache

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"resume-builder/internal/shared/cache"
)

var _ cache.Cache = (*Cache)(nil)

// Cache implements cache.Cache on patrickmn/go-cache.
type Cache struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// New builds a cache whose entries default to ttl and are swept every cleanup.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{c: gocache.New(ttl, cleanup)}
}

func (m *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.c.Get(key)
	if !ok {
		return nil, nil
	}
	switch t := v.(type) {
	case []byte:
		return append([]byte(nil), t...), nil
	case int64:
		// Counters read back as decimal text, as they do from Redis.
		return []byte(strconv.FormatInt(t, 10)), nil
	}
	return nil, nil
}

func (m *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, append([]byte(nil), val...), ttl)
	return nil
}

func (m *Cache) Del(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

func (m *Cache) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Add fails when the counter already exists.
	_ = m.c.Add(key, int64(0), gocache.NoExpiration)
	return m.c.IncrementInt64(key, 1)
}

func (m *Cache) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Cache) Close() error {
	m.c.Flush()
	return nil
}
