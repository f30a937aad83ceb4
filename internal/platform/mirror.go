package platform

import (
	"fmt"
	"strings"
)

// MirrorURL 由内容哈希推导镜像地址：{base}/{platform}/{sha1 前两位}/{sha1}。
// 两位分片前缀将文件分散到存储子目录中。
func MirrorURL(mirrorBase string, p Platform, sha1 string) (string, error) {
	if len(sha1) < 2 {
		return "", fmt.Errorf("%w: sha1 过短: %q", ErrHashUnavailable, sha1)
	}
	base := strings.TrimSuffix(mirrorBase, "/")
	return fmt.Sprintf("%s/%s/%s/%s", base, p, sha1[:2], sha1), nil
}
