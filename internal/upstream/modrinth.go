package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// ModrinthClient 封装 Modrinth v2 REST API。
type ModrinthClient struct {
	client  *Client
	baseURL string
}

// NewModrinthClient 以共享 Client 构造 Modrinth 客户端。
func NewModrinthClient(client *Client, baseURL string) *ModrinthClient {
	return &ModrinthClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ModrinthVersionFile 是版本下的单个文件条目。
type ModrinthVersionFile struct {
	Hashes struct {
		SHA1   string `json:"sha1"`
		SHA512 string `json:"sha512"`
	} `json:"hashes"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Size     int64  `json:"size"`
}

// ModrinthVersion 是 version 接口返回的元数据。
type ModrinthVersion struct {
	ID            string                `json:"id"`
	ProjectID     string                `json:"project_id"`
	Name          string                `json:"name"`
	VersionNumber string                `json:"version_number"`
	DatePublished time.Time             `json:"date_published"`
	Files         []ModrinthVersionFile `json:"files"`
}

// ModrinthProject 是 project 接口返回的元数据（只取本服务关心的字段）。
type ModrinthProject struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Versions []string `json:"versions"`
}

// SearchHit 是搜索结果中的单个项目。
type SearchHit struct {
	ProjectID string `json:"project_id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
}

// SearchResult 是搜索接口的分页响应。
type SearchResult struct {
	Hits      []SearchHit `json:"hits"`
	Offset    int         `json:"offset"`
	Limit     int         `json:"limit"`
	TotalHits int         `json:"total_hits"`
}

// SearchOptions 控制搜索分页、排序与过滤。
type SearchOptions struct {
	Limit  int
	Offset int
	Index  string
	Facets *FacetSet
}

// VersionsOptions 过滤项目版本列表。
type VersionsOptions struct {
	GameVersions []string
	Loaders      []string
	Featured     *bool
}

// Project 按 id 或 slug 获取项目元数据。
func (m *ModrinthClient) Project(ctx context.Context, idOrSlug string) (*ModrinthProject, error) {
	var project ModrinthProject
	if err := m.client.GetJSON(ctx, m.baseURL+"/project/"+url.PathEscape(idOrSlug), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectVersions 获取项目的全部版本，列表参数以 JSON 数组形式传递。
func (m *ModrinthClient) ProjectVersions(ctx context.Context, idOrSlug string, opts VersionsOptions) ([]ModrinthVersion, error) {
	query := url.Values{}
	if len(opts.GameVersions) > 0 {
		encoded, err := json.Marshal(opts.GameVersions)
		if err != nil {
			return nil, err
		}
		query.Set("game_versions", string(encoded))
	}
	if len(opts.Loaders) > 0 {
		encoded, err := json.Marshal(opts.Loaders)
		if err != nil {
			return nil, err
		}
		query.Set("loaders", string(encoded))
	}
	if opts.Featured != nil {
		query.Set("featured", strconv.FormatBool(*opts.Featured))
	}

	var versions []ModrinthVersion
	if err := m.client.GetJSON(ctx, m.baseURL+"/project/"+url.PathEscape(idOrSlug)+"/version", query, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// Version 按版本 id 获取元数据。
func (m *ModrinthClient) Version(ctx context.Context, versionID string) (*ModrinthVersion, error) {
	var version ModrinthVersion
	if err := m.client.GetJSON(ctx, m.baseURL+"/version/"+url.PathEscape(versionID), nil, &version); err != nil {
		return nil, err
	}
	return &version, nil
}

// Search 调用搜索接口，facets 序列化为嵌套数组。
func (m *ModrinthClient) Search(ctx context.Context, queryText string, opts SearchOptions) (*SearchResult, error) {
	query := url.Values{}
	query.Set("query", queryText)
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Index != "" {
		query.Set("index", opts.Index)
	}
	if !opts.Facets.Empty() {
		encoded, err := opts.Facets.Encode()
		if err != nil {
			return nil, fmt.Errorf("编码 facets 失败: %w", err)
		}
		query.Set("facets", encoded)
	}

	var result SearchResult
	if err := m.client.GetJSON(ctx, m.baseURL+"/search", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadInfo 拉取版本元数据并投影为统一下载描述。
// 上游不存在该版本时返回 (nil, nil)。
func (m *ModrinthClient) DownloadInfo(ctx context.Context, versionID string) (*DownloadInfo, error) {
	version, err := m.Version(ctx, versionID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(version.Files) == 0 {
		return nil, nil
	}

	// 优先取标记为 primary 的文件，保持与上游展示一致。
	file := version.Files[0]
	for _, candidate := range version.Files {
		if candidate.Primary {
			file = candidate
			break
		}
	}

	return &DownloadInfo{
		Platform:    platform.Modrinth,
		Name:        version.Name,
		PublishedAt: version.DatePublished,
		SHA1:        file.Hashes.SHA1,
		FileName:    file.Filename,
		URL:         file.URL,
		Size:        file.Size,
	}, nil
}
