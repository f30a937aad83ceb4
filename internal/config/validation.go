package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if g.MirrorBase == "" {
		return newFieldError("MirrorBase", "不能为空")
	}
	if err := validateHTTPURL(g.MirrorBase); err != nil {
		return fmt.Errorf("MirrorBase: %w", err)
	}
	if g.RedisAddr == "" {
		return newFieldError("RedisAddr", "不能为空")
	}
	if g.MongoURI == "" {
		return newFieldError("MongoURI", "不能为空")
	}
	if g.QueueURL == "" {
		return newFieldError("QueueURL", "不能为空")
	}
	if g.ResponseCacheTTL.DurationValue() <= 0 {
		return newFieldError("ResponseCacheTTL", "必须大于 0")
	}
	if g.RedirectCacheTTL.DurationValue() <= 0 {
		return newFieldError("RedirectCacheTTL", "必须大于 0")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("UpstreamTimeout", "必须大于 0")
	}
	if g.MaxRetries < 1 {
		return newFieldError("MaxRetries", "至少为 1")
	}
	if g.Proxy != "" {
		if err := validateHTTPURL(g.Proxy); err != nil {
			return fmt.Errorf("Proxy: %w", err)
		}
	}

	if !c.Modrinth.Enabled && !c.Curseforge.Enabled {
		return errors.New("至少需要启用一个平台")
	}

	if err := validatePlatform("Modrinth", c.Modrinth); err != nil {
		return err
	}
	if err := validatePlatform("Curseforge", c.Curseforge); err != nil {
		return err
	}
	if c.Curseforge.Enabled && c.Curseforge.APIKey == "" {
		return newFieldError(platformField("Curseforge", "APIKey"), "启用时不能为空")
	}

	return nil
}

func validatePlatform(name string, p PlatformConfig) error {
	if !p.Enabled {
		return nil
	}
	if err := validateHTTPURL(p.BaseURL); err != nil {
		return fmt.Errorf("%s: %w", platformField(name, "BaseURL"), err)
	}
	if err := validateHTTPURL(p.OriginBase); err != nil {
		return fmt.Errorf("%s: %w", platformField(name, "OriginBase"), err)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("缺少地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	return nil
}
