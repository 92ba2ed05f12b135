// Package platform 小程序宿主平台适配
package platform

import (
	"context"

	"github.com/go-pay/gopay"
)

// wechatHost 微信支付系宿主
// 微信小程序、H5 与 App 共用微信支付轨道
type wechatHost struct {
	platform Platform
	bridge   Bridge
}

// Platform 返回宿主平台
func (h *wechatHost) Platform() Platform { return h.platform }

// Config 返回宿主平台配置
func (h *wechatHost) Config() Config { return ConfigFor(h.platform) }

// Login 执行宿主登录
func (h *wechatHost) Login(ctx context.Context) (string, error) {
	return hostLogin(ctx, h.platform, h.bridge)
}

// Pay 调起微信原生支付
// 仅接受微信形状的支付参数；支付宝形状的请求在本宿主不可用
func (h *wechatHost) Pay(ctx context.Context, req *PayRequest) error {
	if req == nil || req.Wechat == nil {
		return ErrUnsupportedPlatform
	}
	bm := make(gopay.BodyMap)
	bm.Set("appId", req.Wechat.AppId).
		Set("timeStamp", req.Wechat.TimeStamp).
		Set("nonceStr", req.Wechat.NonceStr).
		Set("package", req.Wechat.Package).
		Set("signType", req.Wechat.SignType).
		Set("paySign", req.Wechat.PaySign)
	if err := h.bridge.RequestPayment(ctx, bm); err != nil {
		return &PaymentError{Platform: PayPlatformWx, Message: err.Error(), Err: err}
	}
	return nil
}
