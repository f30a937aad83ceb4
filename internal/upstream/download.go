package upstream

import (
	"time"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// DownloadInfo 是各平台版本元数据投影出的统一下载描述，
// 后续镜像任务只依赖这一形状，不关心各上游的原始 schema。
type DownloadInfo struct {
	Platform    platform.Platform `json:"platform"`
	Name        string            `json:"name"`
	PublishedAt time.Time         `json:"published_at"`
	SHA1        string            `json:"sha1"`
	FileName    string            `json:"filename"`
	URL         string            `json:"url"`
	Size        int64             `json:"size"`
}
