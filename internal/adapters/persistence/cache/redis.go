package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"maintex-gateway/internal/core/domain"

	"github.com/redis/go-redis/v9"
)

const (
	fieldData      = "data"
	fieldFetchedAt = "fetched_at"
)

// RedisExportCache shares fetched workbooks between gateway replicas.
// Each entry is a hash {data, fetched_at} with a key-level expiry.
type RedisExportCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisExportCache creates a Redis-backed export cache
func NewRedisExportCache(client redis.UniversalClient, prefix string) *RedisExportCache {
	return &RedisExportCache{client: client, prefix: prefix + "export:"}
}

func (c *RedisExportCache) Get(ctx context.Context, key string) (*domain.ExportEntry, bool, error) {
	vals, err := c.client.HMGet(ctx, c.prefix+key, fieldData, fieldFetchedAt).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("export cache get: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return nil, false, nil
	}

	data, ok := vals[0].(string)
	if !ok {
		return nil, false, nil
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, false, nil
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false, fmt.Errorf("export cache get: bad timestamp %q", raw)
	}

	return &domain.ExportEntry{Data: []byte(data), FetchedAt: time.Unix(0, nanos)}, true, nil
}

func (c *RedisExportCache) Set(ctx context.Context, key string, entry *domain.ExportEntry, ttl time.Duration) error {
	k := c.prefix + key
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldData, entry.Data, fieldFetchedAt, strconv.FormatInt(entry.FetchedAt.UnixNano(), 10))
		if ttl > 0 {
			pipe.PExpire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("export cache set: %w", err)
	}
	return nil
}
