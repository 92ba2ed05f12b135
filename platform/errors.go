// Package platform 小程序宿主平台适配
package platform

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform 当前宿主不具备所请求的支付能力
var ErrUnsupportedPlatform = errors.New("platform: payment rail not supported on current host")

// ErrNoAuthCode 宿主登录未返回授权码
var ErrNoAuthCode = errors.New("platform: native login returned no auth code")

// LoginError 宿主登录失败
type LoginError struct {
	Platform Platform // 发生失败的平台
	Message  string   // 失败描述
	Err      error    // 底层错误
}

// Error 实现 error 接口
func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s登录失败: %s: %v", e.Platform.DisplayName(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s登录失败: %s", e.Platform.DisplayName(), e.Message)
}

// Unwrap 返回底层错误
func (e *LoginError) Unwrap() error { return e.Err }

// PaymentError 宿主原生支付失败
type PaymentError struct {
	Platform PayPlatform // 发生失败的支付平台
	Message  string      // 原生错误描述
	Err      error       // 底层错误
}

// Error 实现 error 接口
func (e *PaymentError) Error() string {
	return fmt.Sprintf("%s pay failed: %s", e.Platform, e.Message)
}

// Unwrap 返回底层错误
func (e *PaymentError) Unwrap() error { return e.Err }
