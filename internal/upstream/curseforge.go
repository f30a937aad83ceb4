package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// CurseforgeClient 封装 Curseforge Core REST API，所有请求携带 x-api-key。
type CurseforgeClient struct {
	client  *Client
	baseURL string
}

// NewCurseforgeClient 以共享 Client 构造 Curseforge 客户端。
func NewCurseforgeClient(client *Client, baseURL string) *CurseforgeClient {
	return &CurseforgeClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// CurseforgeMod 是 mod 接口返回的元数据（只取本服务关心的字段）。
type CurseforgeMod struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CurseforgeFile 是单个文件的元数据，哈希列表带算法标签。
type CurseforgeFile struct {
	ID          int64                 `json:"id"`
	ModID       int64                 `json:"modId"`
	DisplayName string                `json:"displayName"`
	FileName    string                `json:"fileName"`
	FileDate    time.Time             `json:"fileDate"`
	FileLength  int64                 `json:"fileLength"`
	DownloadURL string                `json:"downloadUrl"`
	Hashes      []platform.TaggedHash `json:"hashes"`
}

// Curseforge 所有响应都包在 {"data": ...} 信封里。
type envelope[T any] struct {
	Data T `json:"data"`
}

// Mod 按 id 获取 mod 元数据。
func (c *CurseforgeClient) Mod(ctx context.Context, modID int64) (*CurseforgeMod, error) {
	var resp envelope[CurseforgeMod]
	url := fmt.Sprintf("%s/v1/mods/%d", c.baseURL, modID)
	if err := c.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// File 按 mod id + file id 获取单个文件元数据。
func (c *CurseforgeClient) File(ctx context.Context, modID, fileID int64) (*CurseforgeFile, error) {
	var resp envelope[CurseforgeFile]
	url := fmt.Sprintf("%s/v1/mods/%d/files/%d", c.baseURL, modID, fileID)
	if err := c.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Files 批量获取文件元数据，供批量同步任务使用。
func (c *CurseforgeClient) Files(ctx context.Context, fileIDs []int64) ([]CurseforgeFile, error) {
	var resp envelope[[]CurseforgeFile]
	body := map[string][]int64{"fileIds": fileIDs}
	if err := c.client.PostJSON(ctx, c.baseURL+"/v1/mods/files", body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// DownloadInfo 拉取文件元数据并投影为统一下载描述。
// 上游不存在该文件时返回 (nil, nil)；没有 SHA-1 标签时返回
// platform.ErrHashUnavailable。
func (c *CurseforgeClient) DownloadInfo(ctx context.Context, modID, fileID int64) (*DownloadInfo, error) {
	file, err := c.File(ctx, modID, fileID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	sha1, err := platform.SelectSHA1(file.Hashes)
	if err != nil {
		return nil, err
	}

	return &DownloadInfo{
		Platform:    platform.Curseforge,
		Name:        file.DisplayName,
		PublishedAt: file.FileDate,
		SHA1:        sha1,
		FileName:    file.FileName,
		URL:         file.DownloadURL,
		Size:        file.FileLength,
	}, nil
}
