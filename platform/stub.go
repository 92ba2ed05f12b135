// Package platform 小程序宿主平台适配
package platform

import (
	"context"

	"github.com/go-pay/gopay"
)

// StubBridge 桩桥接实现
// 用于开发与测试环境模拟宿主原生能力
type StubBridge struct {
	LoginCode string // Login 返回的授权码
	LoginErr  error  // Login 返回的错误
	PayErr    error  // RequestPayment 返回的错误

	PayCalls []gopay.BodyMap // 记录的支付调用参数
}

// NewStubBridge 创建新的桩桥接实例
func NewStubBridge(code string) *StubBridge {
	return &StubBridge{LoginCode: code}
}

// Login 返回预设的授权码
func (b *StubBridge) Login(ctx context.Context) (string, error) {
	if b.LoginErr != nil {
		return "", b.LoginErr
	}
	return b.LoginCode, nil
}

// RequestPayment 记录支付参数并返回预设结果
func (b *StubBridge) RequestPayment(ctx context.Context, params gopay.BodyMap) error {
	b.PayCalls = append(b.PayCalls, params)
	return b.PayErr
}
