// Package client 鉴权请求客户端
package client

import (
	"errors"
	"fmt"
)

// ErrUnauthorized 单次重登重试后仍未授权
var ErrUnauthorized = errors.New("client: unauthorized")

// ErrSessionExpired 重登失败，会话已失效
var ErrSessionExpired = errors.New("client: session expired")

// BizError 服务端业务错误
type BizError struct {
	Code int    // 业务状态码
	Msg  string // 服务端提示
}

// Error 实现 error 接口
func (e *BizError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Msg)
}
