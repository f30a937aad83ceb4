package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mod-mirror/mod-mirror/internal/config"
	"github.com/mod-mirror/mod-mirror/internal/engine"
	"github.com/mod-mirror/mod-mirror/internal/platform"
	"github.com/mod-mirror/mod-mirror/internal/version"
)

// Decider 是路由层对决策引擎的唯一依赖，便于在测试中注入假实现。
type Decider interface {
	Decide(ctx context.Context, identity platform.FileIdentity) engine.Decision
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger        *logrus.Logger
	Engine        Decider
	ResponseCache *ResponseCache
	Config        *config.Config
}

const (
	contextKeyRequestID = "_modmirror_request_id"

	headerRequestID     = "X-Request-ID"
	headerSource        = "X-Mod-Mirror-Source"
	headerResponseCache = "X-Mod-Mirror-Response-Cache"
)

// NewApp builds a Fiber application with redirect routes and structured
// error handling. 平台路由只在对应平台启用时注册。
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if opts.ResponseCache == nil {
		return nil, errors.New("response cache is required")
	}
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/-/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": version.Full(),
		})
	})

	handler := &redirectHandler{
		logger: opts.Logger,
		engine: opts.Engine,
	}

	cacheMW := responseCacheMiddleware(opts.ResponseCache)
	if opts.Config.Modrinth.Enabled {
		app.Get("/data/:project_id/versions/:version_id/:file_name", handler.modrinth, cacheMW)
	}
	if opts.Config.Curseforge.Enabled {
		app.Get("/files/:fileid1/:fileid2/:file_name", handler.curseforge, cacheMW)
	}

	return app, nil
}

// requestIDMiddleware 为每个请求生成 X-Request-ID。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set(headerRequestID, reqID)
		return c.Next()
	}
}

// responseCacheMiddleware 在引擎之前短路 TTL 内的重复请求，
// 并在引擎产出重定向后记录完整响应。
func responseCacheMiddleware(cache *ResponseCache) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := string(c.Request().URI().Path())

		if entry, ok := cache.get(key); ok {
			c.Set("Location", entry.Location)
			c.Set(headerSource, entry.Source)
			c.Set(headerResponseCache, "hit")
			c.Status(entry.Status)
			return nil
		}

		if err := c.Next(); err != nil {
			return err
		}

		c.Set(headerResponseCache, "miss")
		status := c.Response().StatusCode()
		if status == fiber.StatusFound {
			location := string(c.Response().Header.Peek("Location"))
			if location != "" {
				cache.put(key, cachedRedirect{
					Status:   status,
					Location: location,
					Source:   string(c.Response().Header.Peek(headerSource)),
				})
			}
		}
		return nil
	}
}

// RequestID returns the request identifier stored by the middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

// ListenAddr 输出 Fiber 监听地址。
func ListenAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%d", cfg.Global.ListenPort)
}

// normalizeFileName 清理路径参数中可能残留的斜杠前缀。
func normalizeFileName(raw string) string {
	return strings.TrimPrefix(raw, "/")
}
