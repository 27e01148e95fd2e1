package cache

import (
	"context"
	"sync"
	"time"
)

// LoaderFunc produces the value for a key on a miss.
type LoaderFunc[T any] func(ctx context.Context, key string) (T, error)

// LoadingCache fills itself through a loader. Invalidate bumps a per-key
// generation so a load that started before the invalidation is returned to
// its caller but never stored.
type LoadingCache[T any] struct {
	lru  *LRUCache[T]
	load LoaderFunc[T]

	mu  sync.Mutex
	gen map[string]uint64
}

func NewLoadingCache[T any](maxSize int, ttl time.Duration, load LoaderFunc[T]) *LoadingCache[T] {
	return &LoadingCache[T]{
		lru:  NewLRUCache[T](maxSize, ttl),
		load: load,
		gen:  make(map[string]uint64),
	}
}

// Get returns the cached value for key or loads it. Load errors are not cached.
func (c *LoadingCache[T]) Get(ctx context.Context, key string) (T, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.gen[key]
	c.mu.Unlock()

	v, err := c.load(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	if c.gen[key] == gen {
		c.lru.Set(key, v)
	}
	c.mu.Unlock()
	return v, nil
}

// Invalidate forgets key.
func (c *LoadingCache[T]) Invalidate(key string) {
	c.mu.Lock()
	c.gen[key]++
	c.lru.Delete(key)
	c.mu.Unlock()
}

func (c *LoadingCache[T]) CleanExpired() int { return c.lru.CleanExpired() }

func (c *LoadingCache[T]) Size() int { return c.lru.Size() }
