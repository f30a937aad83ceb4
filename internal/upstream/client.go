package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// 所有出站请求携带的固定头部，与线上部署保持一致。
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.5060.134 Safari/537.36 Edg/103.0.1264.71"
	acceptJSON       = "application/json"
)

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// ClientOptions 控制共享客户端的超时、重试与出站代理。
type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
	Proxy      string
	// ExtraHeaders 附加在每次请求上，例如 Curseforge 的 x-api-key。
	ExtraHeaders map[string]string
}

// Client 是上游 REST API 的弹性调用器：每次调用校验响应状态，
// 仅对非 2xx 状态做有界重试，其余失败立即返回。
type Client struct {
	http       *http.Client
	maxRetries int
	headers    map[string]string
}

// NewClient 构造共享客户端；Proxy 为空时沿用环境代理配置。
func NewClient(opts ClientOptions) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := opts.MaxRetries
	if retries < 1 {
		retries = 3
	}

	transport := defaultTransport.Clone()
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("非法代理地址: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	headers := map[string]string{
		"User-Agent": defaultUserAgent,
		"Accept":     acceptJSON,
	}
	for key, value := range opts.ExtraHeaders {
		headers[key] = value
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxRetries: retries,
		headers:    headers,
	}, nil
}

// GetJSON 发起 GET 请求并把 2xx 响应体解码进 out。
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out interface{}) error {
	return c.callJSON(ctx, http.MethodGet, rawURL, query, nil, out)
}

// PostJSON 发起 JSON body 的 POST 请求，body 在每次重试前重新序列化。
func (c *Client) PostJSON(ctx context.Context, rawURL string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("序列化请求体失败: %w", err)
	}
	return c.callJSON(ctx, http.MethodPost, rawURL, nil, payload, out)
}

// callJSON 是有界重试循环：非 2xx 最多尝试 maxRetries 次，
// 其余错误不消耗重试机会。
func (c *Client) callJSON(ctx context.Context, method, rawURL string, query url.Values, body []byte, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.attempt(ctx, method, rawURL, query, body, out)
		if err == nil {
			return nil
		}
		if _, retryable := IsStatusError(err); !retryable {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, method, rawURL string, query url.Values, body []byte, out interface{}) error {
	target := rawURL
	if len(query) > 0 {
		sep := "?"
		if u, err := url.Parse(rawURL); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target = rawURL + sep + query.Encode()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", acceptJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求上游失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读尽 body 以复用连接。
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("上游返回空响应: %s", target)
		}
		return fmt.Errorf("解码响应失败: %w", err)
	}
	return nil
}
