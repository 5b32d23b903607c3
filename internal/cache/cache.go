package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Cache stores rendered response blobs under string keys with a bounded
// time-to-live. Injected as a dependency, lifecycle scoped to the process.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, blob []byte, ttl time.Duration)
	Delete(key string)
}

// ----- in-process backend -----

type memoryItem struct {
	blob      []byte
	expiresAt time.Time
}

// Memory is an LRU-bounded in-process cache with per-entry expiry.
type Memory struct {
	lruCache *lru.Cache[string, memoryItem]
}

func NewMemory(size int) (*Memory, error) {
	l, err := lru.New[string, memoryItem](size)
	if err != nil {
		return nil, err
	}
	return &Memory{lruCache: l}, nil
}

func (c *Memory) Get(key string) ([]byte, bool) {
	item, ok := c.lruCache.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.lruCache.Remove(key)
		return nil, false
	}
	return item.blob, true
}

func (c *Memory) Set(key string, blob []byte, ttl time.Duration) {
	c.lruCache.Add(key, memoryItem{
		blob:      blob,
		expiresAt: time.Now().Add(ttl),
	})
}

func (c *Memory) Delete(key string) {
	c.lruCache.Remove(key)
}

// ----- redis backend -----

// Redis keeps blobs in a shared Redis instance so cached renders survive
// restarts and are shared across replicas.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Redis) Set(key string, blob []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.client.Set(ctx, key, blob, ttl).Err()
}

func (c *Redis) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.client.Del(ctx, key).Err()
}
