package platform

import "errors"

// HashAlgo 对应 Curseforge API 中 hashes[].algo 的取值。
type HashAlgo int

const (
	HashAlgoSHA1 HashAlgo = 1
	HashAlgoMD5  HashAlgo = 2
)

// TaggedHash 是 Curseforge 记录携带的带算法标签的哈希条目。
type TaggedHash struct {
	Value string   `json:"value" bson:"value"`
	Algo  HashAlgo `json:"algo" bson:"algo"`
}

// ErrHashUnavailable 表示记录存在但没有任何可用于镜像寻址的 SHA-1 哈希。
var ErrHashUnavailable = errors.New("no sha1 hash available")

// SelectSHA1 按算法标签在哈希列表中查找 SHA-1 条目。
// 只认 algo 标签，不做位置假设；找不到时返回 ErrHashUnavailable。
func SelectSHA1(hashes []TaggedHash) (string, error) {
	for _, h := range hashes {
		if h.Algo == HashAlgoSHA1 && h.Value != "" {
			return h.Value, nil
		}
	}
	return "", ErrHashUnavailable
}
