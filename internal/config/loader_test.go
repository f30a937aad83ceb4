package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, minimalConfig())
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Global.ListenPort != 8080 {
		t.Fatalf("默认端口不符: %d", cfg.Global.ListenPort)
	}
	if cfg.Global.MaxRetries != 3 {
		t.Fatalf("默认重试次数不符: %d", cfg.Global.MaxRetries)
	}
	want := 2*time.Hour + 48*time.Minute
	if cfg.Global.RedirectCacheTTL.DurationValue() != want {
		t.Fatalf("默认重定向缓存 TTL 不符: %v", cfg.Global.RedirectCacheTTL.DurationValue())
	}
	if cfg.Global.ResponseCacheTTL.DurationValue() != want {
		t.Fatalf("默认响应缓存 TTL 不符: %v", cfg.Global.ResponseCacheTTL.DurationValue())
	}
	if cfg.Modrinth.BaseURL != "https://api.modrinth.com/v2" {
		t.Fatalf("Modrinth BaseURL 默认值不符: %s", cfg.Modrinth.BaseURL)
	}
	if cfg.Curseforge.OriginBase != "https://mediafilez.curseforge.com" {
		t.Fatalf("Curseforge OriginBase 默认值不符: %s", cfg.Curseforge.OriginBase)
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
MirrorBase = "https://files.example.com"
RedirectCacheTTL = "boom"

[Modrinth]
Enabled = true
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAcceptsIntegerSeconds(t *testing.T) {
	cfg := `
MirrorBase = "https://files.example.com"
RedirectCacheTTL = 10080
UpstreamTimeout = "15s"

[Modrinth]
Enabled = true
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if loaded.Global.RedirectCacheTTL.DurationValue() != 10080*time.Second {
		t.Fatalf("整数秒解析失败: %v", loaded.Global.RedirectCacheTTL.DurationValue())
	}
	if loaded.Global.UpstreamTimeout.DurationValue() != 15*time.Second {
		t.Fatalf("Duration 字符串解析失败: %v", loaded.Global.UpstreamTimeout.DurationValue())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Fatalf("不存在的配置文件应失败")
	}
}
