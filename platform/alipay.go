// Package platform 小程序宿主平台适配
package platform

import (
	"context"

	"github.com/go-pay/gopay"
)

// alipayHost 支付宝小程序宿主
type alipayHost struct {
	bridge Bridge
}

// Platform 返回宿主平台
func (h *alipayHost) Platform() Platform { return PlatformAlipay }

// Config 返回宿主平台配置
func (h *alipayHost) Config() Config { return ConfigFor(PlatformAlipay) }

// Login 执行宿主登录
func (h *alipayHost) Login(ctx context.Context) (string, error) {
	return hostLogin(ctx, PlatformAlipay, h.bridge)
}

// Pay 调起支付宝原生支付
// 支付宝宿主只认交易号；微信形状的请求在本宿主不可用
func (h *alipayHost) Pay(ctx context.Context, req *PayRequest) error {
	if req == nil || req.TradeNo == "" {
		return ErrUnsupportedPlatform
	}
	bm := make(gopay.BodyMap)
	bm.Set("tradeNO", req.TradeNo)
	if err := h.bridge.RequestPayment(ctx, bm); err != nil {
		return &PaymentError{Platform: PayPlatformAlipay, Message: err.Error(), Err: err}
	}
	return nil
}
