package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RedirectFields 提供平台/指纹/命中来源字段，供重定向请求日志复用。
func RedirectFields(platform, fingerprint, source string) logrus.Fields {
	return logrus.Fields{
		"platform":    platform,
		"fingerprint": fingerprint,
		"source":      source,
	}
}
