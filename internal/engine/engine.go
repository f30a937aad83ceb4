package engine

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/mod-mirror/mod-mirror/internal/logging"
	"github.com/mod-mirror/mod-mirror/internal/platform"
	"github.com/mod-mirror/mod-mirror/internal/queue"
	"github.com/mod-mirror/mod-mirror/internal/store"
	"github.com/mod-mirror/mod-mirror/internal/urlcache"
)

// Source 标记重定向目标的来源，供响应头与日志使用。
type Source string

const (
	SourceCache  Source = "cache"
	SourceMirror Source = "mirror"
	SourceOrigin Source = "origin"
)

// Decision 是引擎对一次文件请求的最终裁决：恰好一个重定向地址。
type Decision struct {
	URL    string
	Source Source
}

// Options 注入引擎的全部依赖，均为进程生命周期的共享组件。
type Options struct {
	Cache      urlcache.Cache
	Lookup     store.Lookup
	Dispatcher queue.Dispatcher
	Logger     *logrus.Logger

	// MirrorBase 为镜像存储根地址；OriginBases 为各平台 CDN 根地址。
	MirrorBase  string
	OriginBases map[platform.Platform]string
	// Accelerated 在进程启动时读定，不随请求变化。
	Accelerated bool
}

// Engine 实现 cache-aside 的重定向决策：先查快速缓存，未命中再查
// 文档库，按元数据状态投递至多一个后台任务，并总是给出重定向地址。
// 除注入的外部存储外不持有任何跨请求可变状态，可被任意并发调用。
type Engine struct {
	cache       urlcache.Cache
	lookup      store.Lookup
	dispatcher  queue.Dispatcher
	logger      *logrus.Logger
	mirrorBase  string
	originBases map[platform.Platform]string
	accelerated bool
}

// New 校验依赖并构造引擎。
func New(opts Options) (*Engine, error) {
	if opts.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if opts.Lookup == nil {
		return nil, errors.New("lookup is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.MirrorBase == "" {
		return nil, errors.New("mirror base is required")
	}
	return &Engine{
		cache:       opts.Cache,
		lookup:      opts.Lookup,
		dispatcher:  opts.Dispatcher,
		logger:      opts.Logger,
		mirrorBase:  opts.MirrorBase,
		originBases: opts.OriginBases,
		accelerated: opts.Accelerated,
	}, nil
}

// Decide 为一次文件请求给出重定向裁决。任何依赖故障都降级为回源
// 重定向并记录日志，绝不向调用方抛错；每次调用至多一次缓存读、
// 一次文档库读、一次任务投递，且从不等待任务执行。
func (e *Engine) Decide(ctx context.Context, id platform.FileIdentity) Decision {
	origin := Decision{URL: id.OriginURL(e.originBases[id.Platform]), Source: SourceOrigin}

	cached, err := e.cache.Get(ctx, id)
	switch {
	case err == nil:
		e.debug(id, SourceCache, "url cache hit")
		return Decision{URL: cached, Source: SourceCache}
	case errors.Is(err, urlcache.ErrNotFound):
		// miss, continue
	default:
		e.warn(id, "cache_get_failed", err)
	}

	record, err := e.lookup.FindFile(ctx, id)
	switch {
	case err == nil:
		// record present, continue
	case errors.Is(err, store.ErrNotFound), errors.Is(err, platform.ErrHashUnavailable):
		// 记录缺失，或记录存在但没有可用哈希：都交给同步任务补齐，
		// 请求本身回源。
		if errors.Is(err, platform.ErrHashUnavailable) {
			e.warn(id, "hash_unavailable", err)
		}
		e.enqueue(ctx, id, queue.NewSyncJob(id))
		e.debug(id, SourceOrigin, "record absent, sync task sent")
		return origin
	default:
		e.warn(id, "lookup_failed", err)
		return origin
	}

	if record.Mirrored {
		mirrorURL, err := platform.MirrorURL(e.mirrorBase, id.Platform, record.SHA1)
		if err != nil {
			e.warn(id, "hash_unavailable", err)
			e.enqueue(ctx, id, queue.NewSyncJob(id))
			return origin
		}
		e.enqueue(ctx, id, queue.NewPopulateCacheJob(id, mirrorURL))
		e.debug(id, SourceMirror, "url cache miss, redirect to mirror")
		return Decision{URL: mirrorURL, Source: SourceMirror}
	}

	e.enqueue(ctx, id, queue.NewMirrorJob(id, record, e.accelerated))
	e.debug(id, SourceOrigin, "file not mirrored, mirror task sent")
	return origin
}

// enqueue 投递后台任务；失败只记日志，不影响重定向结果。
func (e *Engine) enqueue(ctx context.Context, id platform.FileIdentity, job queue.Job) {
	if err := e.dispatcher.Enqueue(ctx, job); err != nil {
		fields := logging.RedirectFields(string(id.Platform), id.Fingerprint(), "")
		fields["action"] = "enqueue_failed"
		fields["job_kind"] = string(job.Kind)
		e.logger.WithFields(fields).Warn(err.Error())
	}
}

func (e *Engine) warn(id platform.FileIdentity, action string, err error) {
	fields := logging.RedirectFields(string(id.Platform), id.Fingerprint(), "")
	fields["action"] = action
	e.logger.WithFields(fields).Warn(err.Error())
}

func (e *Engine) debug(id platform.FileIdentity, source Source, msg string) {
	e.logger.WithFields(logging.RedirectFields(string(id.Platform), id.Fingerprint(), string(source))).Debug(msg)
}
