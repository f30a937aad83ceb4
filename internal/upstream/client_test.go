package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, retries int) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{Timeout: 5 * time.Second, MaxRetries: retries})
	if err != nil {
		t.Fatalf("构造客户端失败: %v", err)
	}
	return client
}

func TestCallSucceedsOnThirdAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(t, 3)
	var out struct {
		OK bool `json:"ok"`
	}
	if err := client.GetJSON(context.Background(), server.URL, nil, &out); err != nil {
		t.Fatalf("第三次尝试应成功: %v", err)
	}
	if !out.OK {
		t.Fatalf("响应未解码")
	}
	if calls.Load() != 3 {
		t.Fatalf("期望 3 次请求, 实际 %d", calls.Load())
	}
}

func TestCallExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, 3)
	err := client.GetJSON(context.Background(), server.URL, nil, nil)
	if err == nil {
		t.Fatalf("重试耗尽应返回错误")
	}
	code, ok := IsStatusError(err)
	if !ok || code != http.StatusServiceUnavailable {
		t.Fatalf("期望 StatusError 503, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("期望恰好 3 次请求, 实际 %d", calls.Load())
	}
}

func TestTransportErrorNotRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关闭，触发连接错误

	client := newTestClient(t, 3)
	err := client.GetJSON(context.Background(), server.URL, nil, nil)
	if err == nil {
		t.Fatalf("连接失败应返回错误")
	}
	if _, ok := IsStatusError(err); ok {
		t.Fatalf("传输错误不应是 StatusError: %v", err)
	}
}

func TestDecodeErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestClient(t, 3)
	var out map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, nil, &out)
	if err == nil {
		t.Fatalf("解码失败应返回错误")
	}
	if _, ok := IsStatusError(err); ok {
		t.Fatalf("解码错误不应是 StatusError: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("解码错误不应重试, 实际请求 %d 次", calls.Load())
	}
}

func TestFixedHeadersApplied(t *testing.T) {
	var gotUA, gotAccept, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{
		MaxRetries:   1,
		ExtraHeaders: map[string]string{"x-api-key": "secret"},
	})
	if err != nil {
		t.Fatalf("构造客户端失败: %v", err)
	}
	if err := client.GetJSON(context.Background(), server.URL, nil, nil); err != nil {
		t.Fatalf("请求失败: %v", err)
	}
	if gotUA == "" || gotAccept != "application/json" {
		t.Fatalf("固定头缺失: ua=%q accept=%q", gotUA, gotAccept)
	}
	if gotKey != "secret" {
		t.Fatalf("附加头缺失: %q", gotKey)
	}
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	if _, err := NewClient(ClientOptions{Proxy: "://bad"}); err == nil {
		t.Fatalf("非法代理应失败")
	}
}

func TestIsStatusErrorUnwraps(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &StatusError{URL: "u", StatusCode: 418})
	if code, ok := IsStatusError(wrapped); !ok || code != 418 {
		t.Fatalf("未能解包 StatusError: %v", wrapped)
	}
}
