package platform

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Platform 标识文件所属的上游平台。
type Platform string

const (
	Modrinth   Platform = "modrinth"
	Curseforge Platform = "curseforge"
)

// Redis 快速缓存使用的分类前缀，与线上部署保持一致。
const (
	categoryModrinth   = "file_cdn_modrinth"
	categoryCurseforge = "file_cdn_curseforge"
)

// FileIdentity 唯一定位一次文件请求，由入站路径参数构造后不可变。
//
// Modrinth 由 project/version/filename 三元组定位；Curseforge 的文件 ID
// 在上游 CDN 路径中被拆成两段（例如 /files/3040/523/...），这里同时保留
// 原始分段与拼接后的数值 ID。
type FileIdentity struct {
	Platform  Platform
	ProjectID string
	VersionID string
	FileID    int64
	fileSeg1  string
	fileSeg2  string
	FileName  string
}

// ModrinthIdentity 构造 Modrinth 文件标识，三个字段均不允许为空。
func ModrinthIdentity(projectID, versionID, fileName string) (FileIdentity, error) {
	if projectID == "" || versionID == "" || fileName == "" {
		return FileIdentity{}, fmt.Errorf("modrinth 标识不完整: project=%q version=%q file=%q", projectID, versionID, fileName)
	}
	return FileIdentity{
		Platform:  Modrinth,
		ProjectID: projectID,
		VersionID: versionID,
		FileName:  fileName,
	}, nil
}

// CurseforgeIdentity 根据路径上的两段数字构造 Curseforge 文件标识。
// 两段拼接后必须能解析为十进制文件 ID。
func CurseforgeIdentity(seg1, seg2, fileName string) (FileIdentity, error) {
	if fileName == "" {
		return FileIdentity{}, fmt.Errorf("curseforge 标识缺少文件名")
	}
	fileID, err := strconv.ParseInt(seg1+seg2, 10, 64)
	if err != nil {
		return FileIdentity{}, fmt.Errorf("非法的 curseforge 文件 ID %q/%q: %w", seg1, seg2, err)
	}
	return FileIdentity{
		Platform: Curseforge,
		FileID:   fileID,
		fileSeg1: seg1,
		fileSeg2: seg2,
		FileName: fileName,
	}, nil
}

// Fingerprint 返回快速缓存键，对不同的 (平台, 定位字段, 文件名) 组合保持唯一。
func (id FileIdentity) Fingerprint() string {
	switch id.Platform {
	case Curseforge:
		return fmt.Sprintf("%d/%s", id.FileID, id.FileName)
	default:
		return fmt.Sprintf("%s/%s/%s", id.ProjectID, id.VersionID, id.FileName)
	}
}

// CacheCategory 返回 Fingerprint 所属的缓存分类，两个平台互不混用。
func (id FileIdentity) CacheCategory() string {
	if id.Platform == Curseforge {
		return categoryCurseforge
	}
	return categoryModrinth
}

// CacheKey 组合分类与指纹，作为快速缓存的完整键。
func (id FileIdentity) CacheKey() string {
	return id.CacheCategory() + ":" + id.Fingerprint()
}

// OriginURL 基于平台 CDN 根地址拼出上游原始下载地址，文件名做路径转义。
func (id FileIdentity) OriginURL(originBase string) string {
	base := strings.TrimSuffix(originBase, "/")
	escaped := url.PathEscape(id.FileName)
	switch id.Platform {
	case Curseforge:
		return fmt.Sprintf("%s/files/%s/%s/%s", base, id.fileSeg1, id.fileSeg2, escaped)
	default:
		return fmt.Sprintf("%s/data/%s/versions/%s/%s", base, id.ProjectID, id.VersionID, escaped)
	}
}

// String 输出日志友好的标识描述。
func (id FileIdentity) String() string {
	return string(id.Platform) + "/" + id.Fingerprint()
}
