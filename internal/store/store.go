package store

import (
	"context"
	"errors"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// FileRecord 是文档库中一条文件元数据的归一化视图，对引擎只读。
type FileRecord struct {
	Platform platform.Platform
	SHA1     string
	FileName string
	Size     int64
	// Mirrored 表示文件已经存在于本地镜像存储中。
	Mirrored bool
}

// Lookup 按文件标识查询权威元数据。定位字段与文件名必须同时精确匹配，
// 文件名不一致的记录视为不存在。
type Lookup interface {
	FindFile(ctx context.Context, identity platform.FileIdentity) (*FileRecord, error)
}

// ErrNotFound 表示文档库中没有匹配记录。这不是故障，而是引擎状态机里
// 一个合法的终态输入。
var ErrNotFound = errors.New("file record not found")
