package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/mod-mirror/mod-mirror/internal/logging"
	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// redirectHandler 把路径参数转换为文件标识，交给引擎裁决后输出
// 302 重定向。引擎保证总能给出地址，所以这里没有 5xx 分支。
type redirectHandler struct {
	logger *logrus.Logger
	engine Decider
}

// modrinth 处理 /data/{project_id}/versions/{version_id}/{file_name}。
func (h *redirectHandler) modrinth(c fiber.Ctx) error {
	identity, err := platform.ModrinthIdentity(
		c.Params("project_id"),
		c.Params("version_id"),
		normalizeFileName(c.Params("file_name")),
	)
	if err != nil {
		return h.badRequest(c, err)
	}
	return h.redirect(c, identity)
}

// curseforge 处理 /files/{fileid1}/{fileid2}/{file_name}。
func (h *redirectHandler) curseforge(c fiber.Ctx) error {
	identity, err := platform.CurseforgeIdentity(
		c.Params("fileid1"),
		c.Params("fileid2"),
		normalizeFileName(c.Params("file_name")),
	)
	if err != nil {
		return h.badRequest(c, err)
	}
	return h.redirect(c, identity)
}

func (h *redirectHandler) redirect(c fiber.Ctx, identity platform.FileIdentity) error {
	started := time.Now()
	decision := h.engine.Decide(c.Context(), identity)

	fields := logging.RedirectFields(string(identity.Platform), identity.Fingerprint(), string(decision.Source))
	fields["action"] = "redirect"
	fields["target"] = decision.URL
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if reqID := RequestID(c); reqID != "" {
		fields["request_id"] = reqID
	}
	h.logger.WithFields(fields).Info("redirect_complete")

	c.Set(headerSource, string(decision.Source))
	return c.Redirect().Status(fiber.StatusFound).To(decision.URL)
}

func (h *redirectHandler) badRequest(c fiber.Ctx, err error) error {
	fields := logrus.Fields{
		"action": "redirect",
		"error":  err.Error(),
	}
	if reqID := RequestID(c); reqID != "" {
		fields["request_id"] = reqID
	}
	h.logger.WithFields(fields).Warn("invalid_path")
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_path"})
}
