package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/wemedia/catalog-backend/internal/platform/logger"
	"github.com/wemedia/catalog-backend/internal/utils"
)

// ResolveCache caches resolved subtree asset-id sets between searches.
// It is strictly an accelerator: every method degrades to a miss/no-op on
// error, and correctness never depends on it.
type ResolveCache interface {
	GetIDs(ctx context.Context, key string) ([]uuid.UUID, bool)
	SetIDs(ctx context.Context, key string, ids []uuid.UUID)
	Invalidate(ctx context.Context, keys ...string)
	Close() error
}

type resolveCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// New connects using REDIS_ADDR. An empty REDIS_ADDR is not an error:
// it returns (nil, nil) and callers run uncached.
func New(log *logger.Logger) (ResolveCache, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}

	ttlSeconds := utils.GetEnvAsInt("RESOLVE_CACHE_TTL", 300, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &resolveCache{
		log:    log.With("service", "ResolveCache"),
		rdb:    rdb,
		prefix: "catalog:resolved:",
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (c *resolveCache) GetIDs(ctx context.Context, key string) ([]uuid.UUID, bool) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, false
	}
	ids := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func (c *resolveCache) SetIDs(ctx context.Context, key string, ids []uuid.UUID) {
	strs := make([]string, 0, len(ids))
	for _, id := range ids {
		strs = append(strs, id.String())
	}
	raw, err := json.Marshal(strs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *resolveCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		c.log.Warn("cache invalidate failed", "error", err)
	}
}

func (c *resolveCache) Close() error { return c.rdb.Close() }
