package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

const curseforgeFilePayload = `{
	"data": {
		"id": 3040523,
		"modId": 238222,
		"displayName": "jei_1.12.2-4.16.1.301.jar",
		"fileName": "jei_1.12.2-4.16.1.301.jar",
		"fileDate": "2020-08-24T01:01:01Z",
		"fileLength": 653211,
		"downloadUrl": "https://edge.forgecdn.net/files/3040/523/jei_1.12.2-4.16.1.301.jar",
		"hashes": [
			{"value": "0d9ab0dbeadfa23b6019cbbca03f42cc6bb1e0aa", "algo": 1},
			{"value": "f7ab0dbeadfa23b6019cbbca03f42cc6", "algo": 2}
		]
	}
}`

func TestCurseforgeDownloadInfoSelectsSHA1ByTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/mods/238222/files/3040523" {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(curseforgeFilePayload))
	}))
	defer server.Close()

	client := NewCurseforgeClient(newTestClient(t, 3), server.URL)
	info, err := client.DownloadInfo(context.Background(), 238222, 3040523)
	if err != nil {
		t.Fatalf("投影失败: %v", err)
	}
	if info.Platform != platform.Curseforge {
		t.Fatalf("平台标签不符: %s", info.Platform)
	}
	if info.SHA1 != "0d9ab0dbeadfa23b6019cbbca03f42cc6bb1e0aa" {
		t.Fatalf("应按标签选中 SHA-1: %s", info.SHA1)
	}
	if info.Size != 653211 {
		t.Fatalf("大小不符: %d", info.Size)
	}
}

func TestCurseforgeDownloadInfoHashUnavailable(t *testing.T) {
	payload := `{"data":{"id":1,"modId":2,"fileName":"a.jar","hashes":[{"value":"md5only","algo":2}]}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := NewCurseforgeClient(newTestClient(t, 3), server.URL)
	_, err := client.DownloadInfo(context.Background(), 2, 1)
	if !errors.Is(err, platform.ErrHashUnavailable) {
		t.Fatalf("期望 ErrHashUnavailable, got %v", err)
	}
}

func TestCurseforgeDownloadInfoAbsentOn404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewCurseforgeClient(newTestClient(t, 3), server.URL)
	info, err := client.DownloadInfo(context.Background(), 1, 2)
	if err != nil || info != nil {
		t.Fatalf("404 应映射为 absent, got info=%v err=%v", info, err)
	}
}

func TestCurseforgeFilesBatchRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/mods/files" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string][]int64
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("请求体不是 JSON: %v", err)
		}
		if len(req["fileIds"]) != 2 {
			t.Errorf("fileIds 不符: %v", req)
		}
		w.Write([]byte(`{"data":[{"id":1,"fileName":"a.jar"},{"id":2,"fileName":"b.jar"}]}`))
	}))
	defer server.Close()

	client := NewCurseforgeClient(newTestClient(t, 3), server.URL)
	files, err := client.Files(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("批量获取失败: %v", err)
	}
	if len(files) != 2 || files[1].FileName != "b.jar" {
		t.Fatalf("解码不符: %+v", files)
	}
}
