package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"2h48m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为，所有平台共享同一份参数。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`

	// MirrorBase 是镜像存储对外的根地址，按内容哈希寻址。
	MirrorBase string `mapstructure:"MirrorBase"`
	// Aria2 打开后，镜像任务交给外部多线程下载器执行。
	Aria2 bool `mapstructure:"Aria2"`

	RedisAddr     string `mapstructure:"RedisAddr"`
	RedisPassword string `mapstructure:"RedisPassword"`
	RedisDB       int    `mapstructure:"RedisDB"`

	MongoURI      string `mapstructure:"MongoURI"`
	MongoDatabase string `mapstructure:"MongoDatabase"`

	QueueURL string `mapstructure:"QueueURL"`

	// ResponseCacheTTL 作用于 HTTP 响应级缓存，RedirectCacheTTL 作用于
	// Redis 快速重定向缓存。两者都必须短于上游 URL 的有效期。
	ResponseCacheTTL Duration `mapstructure:"ResponseCacheTTL"`
	RedirectCacheTTL Duration `mapstructure:"RedirectCacheTTL"`

	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
	MaxRetries      int      `mapstructure:"MaxRetries"`
	Proxy           string   `mapstructure:"Proxy"`
}

// PlatformConfig 决定单个上游平台如何启用与寻址。
type PlatformConfig struct {
	Enabled    bool   `mapstructure:"Enabled"`
	BaseURL    string `mapstructure:"BaseURL"`
	OriginBase string `mapstructure:"OriginBase"`
	APIKey     string `mapstructure:"APIKey"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global     GlobalConfig   `mapstructure:",squash"`
	Modrinth   PlatformConfig `mapstructure:"Modrinth"`
	Curseforge PlatformConfig `mapstructure:"Curseforge"`
}

// EnabledPlatforms 返回已启用平台的名称列表，供启动日志使用。
func (c *Config) EnabledPlatforms() []string {
	var names []string
	if c.Modrinth.Enabled {
		names = append(names, "modrinth")
	}
	if c.Curseforge.Enabled {
		names = append(names, "curseforge")
	}
	return names
}

// MirrorMode 输出 `aria2` 或 `normal`，供日志字段使用。
func (g GlobalConfig) MirrorMode() string {
	if g.Aria2 {
		return "aria2"
	}
	return "normal"
}
