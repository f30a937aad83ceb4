package urlcache

import (
	"context"
	"errors"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// Cache 是指纹到已解析镜像地址的快速缓存。条目只在观察到已镜像的
// 记录后写入；缺失永远意味着“未知”，不是“未镜像”。
type Cache interface {
	// Get 返回指纹对应的镜像地址。不存在时返回 ErrNotFound。
	Get(ctx context.Context, identity platform.FileIdentity) (string, error)

	// Put 写入指纹对应的镜像地址，TTL 由实现持有。
	Put(ctx context.Context, identity platform.FileIdentity, url string) error
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("redirect cache entry not found")
