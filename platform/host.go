// Package platform 小程序宿主平台适配
package platform

import (
	"context"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/wechat/v3"
)

// Bridge 原生宿主能力桥接
// 封装嵌入环境暴露的登录与支付原语，便于按宿主注入实现
type Bridge interface {
	// Login 调起宿主原生登录，返回一次性授权码
	Login(ctx context.Context) (string, error)

	// RequestPayment 调起宿主原生支付
	// 参数为平台形状的支付字段
	RequestPayment(ctx context.Context, params gopay.BodyMap) error
}

// PayRequest 原生支付请求
// 两种变体仅填充其一：微信走六要素，支付宝仅需交易号
type PayRequest struct {
	Wechat  *wechat.AppletParams // 微信小程序支付参数
	TradeNo string               // 支付宝交易号
}

// Host 宿主能力提供方接口
// 每个宿主平台一个实现，通过 NewHost 工厂选择
type Host interface {
	// Platform 返回宿主平台
	Platform() Platform

	// Config 返回宿主平台配置
	Config() Config

	// Login 执行宿主登录，返回一次性授权码
	Login(ctx context.Context) (string, error)

	// Pay 调起宿主原生支付
	Pay(ctx context.Context, req *PayRequest) error
}

// NewHost 按平台选择宿主实现
// 支付宝平台使用支付宝宿主，其余平台（微信/H5/App）走微信支付宿主
func NewHost(p Platform, bridge Bridge) Host {
	if !p.Valid() {
		p = PlatformWechat
	}
	if p == PlatformAlipay {
		return &alipayHost{bridge: bridge}
	}
	return &wechatHost{platform: p, bridge: bridge}
}

// DetectHost 探测当前平台并构造对应宿主
func DetectHost(bridge Bridge) Host {
	return NewHost(Detect(), bridge)
}

func hostLogin(ctx context.Context, p Platform, bridge Bridge) (string, error) {
	code, err := bridge.Login(ctx)
	if err != nil {
		return "", &LoginError{Platform: p, Message: "原生登录调用失败", Err: err}
	}
	if code == "" {
		return "", &LoginError{Platform: p, Message: "未获取到授权码", Err: ErrNoAuthCode}
	}
	return code, nil
}
