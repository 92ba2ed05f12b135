// Package payment 统一支付编排
// 对调用方屏蔽微信/支付宝两种支付参数形状的差异：
// 出站请求统一盖上 payType 标识，入站的异构服务端支付载荷
// 归一化为一种参数类型，再路由到对应宿主的原生支付能力
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-pay/gopay"
	"github.com/go-pay/gopay/wechat/v3"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/smart-unicom/rental/logger"
	"github.com/smart-unicom/rental/platform"
)

// ErrInvalidParams 所选支付轨道的必填字段缺失
// 属于调用方编程错误，在任何原生调用发起前快速失败
var ErrInvalidParams = errors.New("payment: incomplete payment params")

// UnifiedPayParams 统一支付参数
// 微信与支付宝两种变体仅填充其一，与 PayType 一致
type UnifiedPayParams struct {
	// 微信支付参数
	AppId     string `json:"appId,omitempty"`
	TimeStamp string `json:"timeStamp,omitempty"`
	NonceStr  string `json:"nonceStr,omitempty"`
	Package   string `json:"package,omitempty"`
	SignType  string `json:"signType,omitempty"`
	PaySign   string `json:"paySign,omitempty"`

	// 支付宝支付参数
	TradeNo string `json:"tradeNo,omitempty"`

	// 通用参数
	OutTradeNo string               `json:"outTradeNo,omitempty"`
	PayType    platform.PayPlatform `json:"payType,omitempty"`
}

// Result 支付结果
// 预期内的支付失败（用户取消、原生拒绝）落在 Success=false，
// 不作为 error 抛出
type Result struct {
	Success  bool                 // 是否支付成功
	Message  string               // 人类可读的结果描述
	Platform platform.PayPlatform // 实际使用的支付平台
}

// Orchestrator 支付编排器
type Orchestrator struct {
	host platform.Host
	log  *zap.Logger
}

// New 创建新的支付编排器实例
func New(host platform.Host) *Orchestrator {
	return &Orchestrator{
		host: host,
		log:  logger.Z().Named("payment"),
	}
}

// PayPlatform 当前生效的支付平台
func (o *Orchestrator) PayPlatform() platform.PayPlatform {
	return o.host.Platform().PayPlatform()
}

// CreateParams 为出站支付请求盖上支付平台标识
// 后端据 payType 选择支付轨道
func (o *Orchestrator) CreateParams(base gopay.BodyMap) gopay.BodyMap {
	bm := make(gopay.BodyMap, len(base)+1)
	for k, v := range base {
		bm[k] = v
	}
	bm.Set("payType", string(o.PayPlatform()))
	return bm
}

// Normalize 归一化服务端支付载荷
// 分类优先级：微信形状（appId+timeStamp）优先于支付宝形状（tradeNo），
// 其次信任载荷自带的 payType，最后回落到本地生效的支付平台。
// 形状判断先于显式 payType：多版本后端并存时载荷形状才是可靠信号
func (o *Orchestrator) Normalize(raw map[string]interface{}) *UnifiedPayParams {
	p := fromRaw(raw)
	switch {
	case p.AppId != "" && p.TimeStamp != "":
		p.PayType = platform.PayPlatformWx
	case p.TradeNo != "":
		p.PayType = platform.PayPlatformAlipay
	case p.PayType == platform.PayPlatformWx || p.PayType == platform.PayPlatformAlipay:
		// 载荷显式携带 payType，保持不变
	default:
		p.PayType = o.PayPlatform()
	}
	return p
}

// NormalizeJSON 归一化 JSON 编码的服务端支付载荷
func (o *Orchestrator) NormalizeJSON(raw json.RawMessage) (*UnifiedPayParams, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("payment: decode pay payload: %w", err)
	}
	return o.Normalize(m), nil
}

// Request 发起统一支付
// 按 payType 路由到宿主原生支付；缺失必填字段在原生调用前
// 返回 ErrInvalidParams，宿主不支持所选轨道返回
// platform.ErrUnsupportedPlatform，原生拒绝吸收为 Result.Success=false
func (o *Orchestrator) Request(ctx context.Context, p *UnifiedPayParams) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil params", ErrInvalidParams)
	}
	payType := p.PayType
	if payType == "" {
		payType = o.PayPlatform()
	}
	if err := validate(payType, p); err != nil {
		return nil, err
	}

	req := toPayRequest(payType, p)
	o.log.Info("requesting native payment",
		zap.String("payType", string(payType)),
		zap.String("outTradeNo", p.OutTradeNo))

	err := o.host.Pay(ctx, req)
	if err == nil {
		return &Result{
			Success:  true,
			Message:  payType.DisplayName() + "支付成功",
			Platform: payType,
		}, nil
	}
	if errors.Is(err, platform.ErrUnsupportedPlatform) {
		return nil, err
	}
	var payErr *platform.PaymentError
	if errors.As(err, &payErr) {
		o.log.Warn("native payment rejected",
			zap.String("payType", string(payType)),
			zap.String("reason", payErr.Message))
		return &Result{
			Success:  false,
			Message:  payType.DisplayName() + "支付失败: " + payErr.Message,
			Platform: payType,
		}, nil
	}
	return nil, err
}

// validate 按支付轨道校验必填字段
func validate(payType platform.PayPlatform, p *UnifiedPayParams) error {
	bm := make(gopay.BodyMap)
	bm.Set("appId", p.AppId).
		Set("timeStamp", p.TimeStamp).
		Set("nonceStr", p.NonceStr).
		Set("package", p.Package).
		Set("signType", p.SignType).
		Set("paySign", p.PaySign).
		Set("tradeNo", p.TradeNo)

	var err error
	if payType == platform.PayPlatformAlipay {
		err = bm.CheckEmptyError("tradeNo")
	} else {
		err = bm.CheckEmptyError("appId", "timeStamp", "nonceStr", "package", "signType", "paySign")
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// toPayRequest 构造宿主原生支付请求
func toPayRequest(payType platform.PayPlatform, p *UnifiedPayParams) *platform.PayRequest {
	if payType == platform.PayPlatformAlipay {
		return &platform.PayRequest{TradeNo: p.TradeNo}
	}
	return &platform.PayRequest{
		Wechat: &wechat.AppletParams{
			AppId:     p.AppId,
			TimeStamp: p.TimeStamp,
			NonceStr:  p.NonceStr,
			Package:   p.Package,
			SignType:  p.SignType,
			PaySign:   p.PaySign,
		},
	}
}

// fromRaw 从原始载荷提取统一支付字段
func fromRaw(raw map[string]interface{}) *UnifiedPayParams {
	return &UnifiedPayParams{
		AppId:      cast.ToString(raw["appId"]),
		TimeStamp:  cast.ToString(raw["timeStamp"]),
		NonceStr:   cast.ToString(raw["nonceStr"]),
		Package:    cast.ToString(raw["package"]),
		SignType:   cast.ToString(raw["signType"]),
		PaySign:    cast.ToString(raw["paySign"]),
		TradeNo:    cast.ToString(raw["tradeNo"]),
		OutTradeNo: cast.ToString(raw["outTradeNo"]),
		PayType:    platform.PayPlatform(cast.ToString(raw["payType"])),
	}
}
