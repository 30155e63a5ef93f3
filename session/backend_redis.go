package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var _ Backend = (*RedisBackend)(nil)

// RedisBackend keeps the session in Redis so it outlives the agent host.
// Apply runs inside MULTI/EXEC.
type RedisBackend struct {
	client redis.UniversalClient
}

func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	found := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return found, nil
	}

	values, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			found[keys[i]] = s
		}
	}
	return found, nil
}

func (b *RedisBackend) Apply(ctx context.Context, set map[string]string, del []string) error {
	if len(set) == 0 && len(del) == 0 {
		return nil
	}

	pairs := make([]interface{}, 0, len(set)*2)
	for k, v := range set {
		pairs = append(pairs, k, v)
	}

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(pairs) > 0 {
			pipe.MSet(ctx, pairs...)
		}
		if len(del) > 0 {
			pipe.Del(ctx, del...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis tx: %w", err)
	}
	return nil
}
