package urlcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// RedisCache 用 `{分类}:{指纹}` 字符串键存储已解析的镜像地址，
// 每个条目携带独立 TTL，到期自动淘汰。
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache 构造 Redis 快速缓存；ttl 必须大于 0。
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) (*RedisCache, error) {
	if client == nil {
		return nil, errors.New("redis client 为空")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("非法 TTL: %v", ttl)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get 实现 Cache。
func (r *RedisCache) Get(ctx context.Context, identity platform.FileIdentity) (string, error) {
	value, err := r.client.Get(ctx, identity.CacheKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("读取快速缓存失败: %w", err)
	}
	return value, nil
}

// Put 实现 Cache。
func (r *RedisCache) Put(ctx context.Context, identity platform.FileIdentity, url string) error {
	if err := r.client.Set(ctx, identity.CacheKey(), url, r.ttl).Err(); err != nil {
		return fmt.Errorf("写入快速缓存失败: %w", err)
	}
	return nil
}
