// Package redis provides a driven.FetchCache shared between repoqa
// processes through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// KeyPrefix namespaces cache keys.
const KeyPrefix = "repoqa:files:"

// scanBatch is the COUNT hint used when clearing.
const scanBatch = 100

// Ensure Cache implements the interface.
var _ driven.FetchCache = (*Cache)(nil)

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	// TTL expires entries; 0 keeps them until invalidated.
	TTL time.Duration
}

// Cache stores each repository's file map as one JSON value.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is required", domain.ErrInvalidInput)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(key string) string {
	return KeyPrefix + key
}

// Get returns the cached files for a key.
func (c *Cache) Get(ctx context.Context, key string) (domain.FileMap, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}

	var files domain.FileMap
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	if files == nil {
		files = domain.FileMap{}
	}
	return files, true, nil
}

// Put stores files under key.
func (c *Cache) Put(ctx context.Context, key string, files domain.FileMap) error {
	if files == nil {
		files = domain.FileMap{}
	}
	data, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.client.Set(ctx, cacheKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Invalidate removes one key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Clear removes every repoqa entry, leaving other keys in the database alone.
func (c *Cache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
