package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError 表示上游返回了非 2xx 状态码。这是唯一会被重试包装器
// 拦截的错误类型；网络/超时/解码错误一律立即向上传播。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.URL)
}

// IsStatusError 判断 err 是否为非 2xx 状态错误，并返回具体状态码。
func IsStatusError(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}

// isNotFound 判断错误是否为重试耗尽后的 404，用于把“记录不存在”
// 与真正的上游故障区分开。
func isNotFound(err error) bool {
	code, ok := IsStatusError(err)
	return ok && code == http.StatusNotFound
}
