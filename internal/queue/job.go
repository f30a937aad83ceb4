package queue

import (
	"github.com/mod-mirror/mod-mirror/internal/platform"
	"github.com/mod-mirror/mod-mirror/internal/store"
)

// Kind 标记后台任务的种类，同时决定任务投递到哪个队列。
type Kind string

const (
	// KindPopulateURLCache 让 worker 把已解析的镜像地址写进快速缓存。
	KindPopulateURLCache Kind = "populate_url_cache"
	// KindMirrorFile 普通单连接镜像下载。
	KindMirrorFile Kind = "mirror_file"
	// KindMirrorFileAria2 交给外部多线程下载器的加速镜像下载。
	KindMirrorFileAria2 Kind = "mirror_file_aria2"
	// KindSyncMetadata 让同步子系统补齐缺失的文件元数据。
	KindSyncMetadata Kind = "sync_metadata"
)

// Identity 是 platform.FileIdentity 的序列化形态，随任务投递给 worker。
type Identity struct {
	Platform  string `json:"platform"`
	ProjectID string `json:"project_id,omitempty"`
	VersionID string `json:"version_id,omitempty"`
	FileID    int64  `json:"file_id,omitempty"`
	FileName  string `json:"file_name"`
}

// Record 是随镜像任务投递的文件元数据快照。
type Record struct {
	Platform string `json:"platform"`
	SHA1     string `json:"sha1"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

// Job 是投递到后台队列的任务载荷。引擎只负责创建与投递，
// 从不关心任务的执行结果。
type Job struct {
	Kind        Kind      `json:"kind"`
	Category    string    `json:"category,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	URL         string    `json:"url,omitempty"`
	Record      *Record   `json:"record,omitempty"`
	Identity    *Identity `json:"identity,omitempty"`
}

// QueueName 返回该任务种类对应的队列名。
func (k Kind) QueueName() string {
	return "mod_mirror." + string(k)
}

func identityPayload(id platform.FileIdentity) *Identity {
	return &Identity{
		Platform:  string(id.Platform),
		ProjectID: id.ProjectID,
		VersionID: id.VersionID,
		FileID:    id.FileID,
		FileName:  id.FileName,
	}
}

// NewPopulateCacheJob 构造“回填快速缓存”任务，url 为已解析的镜像地址。
func NewPopulateCacheJob(id platform.FileIdentity, url string) Job {
	return Job{
		Kind:        KindPopulateURLCache,
		Category:    id.CacheCategory(),
		Fingerprint: id.Fingerprint(),
		URL:         url,
		Identity:    identityPayload(id),
	}
}

// NewMirrorJob 构造镜像下载任务；accelerated 为真时走 aria2 队列。
func NewMirrorJob(id platform.FileIdentity, record *store.FileRecord, accelerated bool) Job {
	kind := KindMirrorFile
	if accelerated {
		kind = KindMirrorFileAria2
	}
	return Job{
		Kind: kind,
		Record: &Record{
			Platform: string(record.Platform),
			SHA1:     record.SHA1,
			FileName: record.FileName,
			Size:     record.Size,
		},
		Identity: identityPayload(id),
	}
}

// NewSyncJob 构造元数据同步任务。
func NewSyncJob(id platform.FileIdentity) Job {
	return Job{
		Kind:     KindSyncMetadata,
		Identity: identityPayload(id),
	}
}
