package server

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// cachedRedirect 是响应级缓存里的一条完整重定向响应。
type cachedRedirect struct {
	Status   int
	Location string
	Source   string
}

// ResponseCache 按请求路径缓存完整的重定向响应，TTL 内的重复请求
// 不再进入决策引擎。条目只在引擎成功产出重定向后写入。
type ResponseCache struct {
	cache *ttlcache.Cache[string, cachedRedirect]
}

// NewResponseCache 构造响应级缓存并启动后台淘汰循环。
func NewResponseCache(ttl time.Duration) *ResponseCache {
	cache := ttlcache.New[string, cachedRedirect](
		ttlcache.WithTTL[string, cachedRedirect](ttl),
		ttlcache.WithDisableTouchOnHit[string, cachedRedirect](),
	)
	go cache.Start()
	return &ResponseCache{cache: cache}
}

func (r *ResponseCache) get(key string) (cachedRedirect, bool) {
	item := r.cache.Get(key)
	if item == nil {
		return cachedRedirect{}, false
	}
	return item.Value(), true
}

func (r *ResponseCache) put(key string, value cachedRedirect) {
	r.cache.Set(key, value, ttlcache.DefaultTTL)
}

// Stop 终止后台淘汰循环。
func (r *ResponseCache) Stop() {
	r.cache.Stop()
}
