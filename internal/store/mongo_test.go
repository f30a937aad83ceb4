package store

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// 文档解码走 bson 标签，这里直接对字节做回环验证标签映射，
// 不依赖真实 Mongo 实例。

func TestModrinthDocumentDecoding(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"project_id": "AANobbMI",
		"version_id": "IZskON6d",
		"filename":   "sodium-fabric-0.5.8+mc1.20.6.jar",
		"hashes": bson.M{
			"sha1":   "deadbeef0123456789deadbeef0123456789dead",
			"sha512": "ignored",
		},
		"size":            1048576,
		"file_cdn_cached": true,
	})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var doc modrinthDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if doc.VersionID != "IZskON6d" || doc.Filename != "sodium-fabric-0.5.8+mc1.20.6.jar" {
		t.Fatalf("定位字段不符: %+v", doc)
	}
	if doc.Hashes.SHA1 != "deadbeef0123456789deadbeef0123456789dead" {
		t.Fatalf("sha1 不符: %s", doc.Hashes.SHA1)
	}
	if !doc.Mirrored || doc.Size != 1048576 {
		t.Fatalf("镜像标记或大小不符: %+v", doc)
	}
}

func TestCurseforgeDocumentDecoding(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"id":       int64(3040523),
		"fileName": "jei_1.12.2-4.16.1.301.jar",
		"hashes": bson.A{
			bson.M{"value": "md5value", "algo": 2},
			bson.M{"value": "sha1value", "algo": 1},
		},
		"fileLength":      653211,
		"file_cdn_cached": false,
	})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var doc curseforgeDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if doc.ID != 3040523 || doc.FileName != "jei_1.12.2-4.16.1.301.jar" {
		t.Fatalf("定位字段不符: %+v", doc)
	}
	sha1, err := platform.SelectSHA1(doc.Hashes)
	if err != nil || sha1 != "sha1value" {
		t.Fatalf("哈希选择不符: %q err=%v", sha1, err)
	}
	if doc.Mirrored {
		t.Fatalf("镜像标记应为 false")
	}
}

func TestFindFileRejectsUnknownPlatform(t *testing.T) {
	lookup := NewMongoLookup(nil)
	if _, err := lookup.FindFile(context.Background(), platform.FileIdentity{Platform: "ftb"}); err == nil {
		t.Fatalf("未知平台应失败")
	}
}
