// Package cache builds the configured driven.FetchCache.
package cache

import (
	"context"
	"fmt"

	"github.com/custodia-labs/repoqa/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/repoqa/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/cache/sqlite"
	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// New returns the cache selected by settings.Backend. An empty backend
// means memory.
func New(ctx context.Context, settings domain.CacheSettings) (driven.FetchCache, error) {
	backend := settings.Backend
	if backend == "" {
		backend = domain.CacheMemory
	}

	switch backend {
	case domain.CacheNone:
		return Noop{}, nil
	case domain.CacheMemory:
		return memory.New(), nil
	case domain.CacheSQLite:
		store, err := sqlite.NewStore(settings.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite cache: %w", err)
		}
		logger.Debug("Fetch cache: sqlite at %s", store.Path())
		return store, nil
	case domain.CacheRedis:
		c, err := rediscache.New(ctx, rediscache.Config{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
			TTL:      settings.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("opening redis cache: %w", err)
		}
		logger.Debug("Fetch cache: redis at %s", settings.RedisAddr)
		return c, nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrUnsupportedType, backend)
	}
}

// Noop never stores anything.
type Noop struct{}

var _ driven.FetchCache = Noop{}

func (Noop) Get(context.Context, string) (domain.FileMap, bool, error) { return nil, false, nil }
func (Noop) Put(context.Context, string, domain.FileMap) error         { return nil }
func (Noop) Invalidate(context.Context, string) error                  { return nil }
func (Noop) Clear(context.Context) error                               { return nil }
func (Noop) Close() error                                              { return nil }
