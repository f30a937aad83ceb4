package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mod-mirror/mod-mirror/internal/platform"
)

// 文档库集合名，由同步子系统写入，这里只读。
const (
	collectionModrinth   = "modrinth_files"
	collectionCurseforge = "curseforge_files"
)

// modrinthDocument 对应同步子系统写入的 Modrinth 文件文档。
type modrinthDocument struct {
	ProjectID string `bson:"project_id"`
	VersionID string `bson:"version_id"`
	Filename  string `bson:"filename"`
	Hashes    struct {
		SHA1 string `bson:"sha1"`
	} `bson:"hashes"`
	Size     int64 `bson:"size"`
	Mirrored bool  `bson:"file_cdn_cached"`
}

// curseforgeDocument 对应同步子系统写入的 Curseforge 文件文档，
// 哈希为带算法标签的列表。
type curseforgeDocument struct {
	ID       int64                 `bson:"id"`
	FileName string                `bson:"fileName"`
	Hashes   []platform.TaggedHash `bson:"hashes"`
	Size     int64                 `bson:"fileLength"`
	Mirrored bool                  `bson:"file_cdn_cached"`
}

// MongoLookup 基于 Mongo 文档库实现 Lookup。
type MongoLookup struct {
	db *mongo.Database
}

// NewMongoLookup 以已连接的数据库句柄构造查询适配器。
func NewMongoLookup(db *mongo.Database) *MongoLookup {
	return &MongoLookup{db: db}
}

// FindFile 按标识做组合等值查询，零或一条结果。
// Modrinth 按 version_id + filename 匹配（project_id 不参与查询，
// 与同步子系统的写入键一致）；Curseforge 按 id + fileName 匹配。
func (m *MongoLookup) FindFile(ctx context.Context, identity platform.FileIdentity) (*FileRecord, error) {
	switch identity.Platform {
	case platform.Modrinth:
		return m.findModrinth(ctx, identity)
	case platform.Curseforge:
		return m.findCurseforge(ctx, identity)
	default:
		return nil, fmt.Errorf("未知平台: %s", identity.Platform)
	}
}

func (m *MongoLookup) findModrinth(ctx context.Context, identity platform.FileIdentity) (*FileRecord, error) {
	filter := bson.D{
		{Key: "version_id", Value: identity.VersionID},
		{Key: "filename", Value: identity.FileName},
	}

	var doc modrinthDocument
	if err := m.db.Collection(collectionModrinth).FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询 modrinth 记录失败: %w", err)
	}

	if doc.Hashes.SHA1 == "" {
		return nil, platform.ErrHashUnavailable
	}
	return &FileRecord{
		Platform: platform.Modrinth,
		SHA1:     doc.Hashes.SHA1,
		FileName: doc.Filename,
		Size:     doc.Size,
		Mirrored: doc.Mirrored,
	}, nil
}

func (m *MongoLookup) findCurseforge(ctx context.Context, identity platform.FileIdentity) (*FileRecord, error) {
	filter := bson.D{
		{Key: "id", Value: identity.FileID},
		{Key: "fileName", Value: identity.FileName},
	}

	var doc curseforgeDocument
	if err := m.db.Collection(collectionCurseforge).FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询 curseforge 记录失败: %w", err)
	}

	sha1, err := platform.SelectSHA1(doc.Hashes)
	if err != nil {
		return nil, err
	}
	return &FileRecord{
		Platform: platform.Curseforge,
		SHA1:     sha1,
		FileName: doc.FileName,
		Size:     doc.Size,
		Mirrored: doc.Mirrored,
	}, nil
}
