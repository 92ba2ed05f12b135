// Package platform 小程序宿主平台适配
// 识别当前运行的宿主环境（微信/支付宝小程序、H5、App），
// 并以统一接口提供宿主的登录与支付原生能力
package platform

import (
	"os"
	"strings"
)

// Platform 宿主平台类型
type Platform string

// 宿主平台常量定义
const (
	PlatformWechat Platform = "wechat" // 微信小程序
	PlatformAlipay Platform = "alipay" // 支付宝小程序
	PlatformH5     Platform = "h5"     // H5 浏览器
	PlatformApp    Platform = "app"    // 原生 App
)

// PayPlatform 支付平台类型
// 即请求/响应中透传给后端的 payType 标识
type PayPlatform string

// 支付平台常量定义
const (
	PayPlatformWx     PayPlatform = "wx"     // 微信支付
	PayPlatformAlipay PayPlatform = "alipay" // 支付宝支付
)

// 宿主环境标记变量，由嵌入方在进程启动时写入
const (
	envPlatformKey    = "RENTAL_PLATFORM"
	envUniPlatformKey = "UNI_PLATFORM"
	uniMarkerMpWeixin = "mp-weixin"
	uniMarkerMpAlipay = "mp-alipay"
	uniMarkerH5       = "h5"
	uniMarkerAppPlus  = "app-plus"
)

// Valid 判断是否为已知平台
func (p Platform) Valid() bool {
	switch p {
	case PlatformWechat, PlatformAlipay, PlatformH5, PlatformApp:
		return true
	}
	return false
}

// PayPlatform 获取平台对应的支付平台
// 纯函数：支付宝平台走支付宝支付，其余平台一律走微信支付
func (p Platform) PayPlatform() PayPlatform {
	if p == PlatformAlipay {
		return PayPlatformAlipay
	}
	return PayPlatformWx
}

// DisplayName 获取平台的显示名称
func (p Platform) DisplayName() string {
	switch p {
	case PlatformWechat:
		return "微信"
	case PlatformAlipay:
		return "支付宝"
	case PlatformH5:
		return "H5"
	case PlatformApp:
		return "APP"
	default:
		return "未知平台"
	}
}

// DisplayName 获取支付平台的显示名称
func (p PayPlatform) DisplayName() string {
	if p == PayPlatformAlipay {
		return "支付宝"
	}
	return "微信"
}

// Detect 探测当前运行平台
// 检测失败时回退到微信平台：这是按历史主力平台取的务实缺省值，
// 不是正确性保证
func Detect() Platform {
	if p := Platform(strings.ToLower(strings.TrimSpace(os.Getenv(envPlatformKey)))); p.Valid() {
		return p
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envUniPlatformKey))) {
	case uniMarkerMpWeixin:
		return PlatformWechat
	case uniMarkerMpAlipay:
		return PlatformAlipay
	case uniMarkerH5:
		return PlatformH5
	case uniMarkerAppPlus:
		return PlatformApp
	}
	return PlatformWechat
}

// Config 平台配置信息
type Config struct {
	Platform        Platform    // 宿主平台
	PayPlatform     PayPlatform // 支付平台
	AppId           string      // 平台注册的应用ID
	LoginProvider   string      // 登录能力提供方名称
	PaymentProvider string      // 支付能力提供方名称
}

// 各平台缺省注册信息
var appConfigs = map[Platform]struct {
	appId           string
	loginProvider   string
	paymentProvider string
}{
	PlatformWechat: {"wx4c0815d1a360d938", "weixin", "wxpay"},
	PlatformAlipay: {"2021005187614465", "alipay", "alipay"},
	PlatformH5:     {"wx4c0815d1a360d938", "weixin", "wxpay"},
	PlatformApp:    {"wx4c0815d1a360d938", "weixin", "wxpay"},
}

// SetAppId 覆盖平台注册的应用ID
// 由配置装载流程调用
func SetAppId(p Platform, appId string) {
	if c, ok := appConfigs[p]; ok && appId != "" {
		c.appId = appId
		appConfigs[p] = c
	}
}

// ConfigFor 获取指定平台的配置
// 按需计算，不做持久化
func ConfigFor(p Platform) Config {
	if !p.Valid() {
		p = PlatformWechat
	}
	c := appConfigs[p]
	return Config{
		Platform:        p,
		PayPlatform:     p.PayPlatform(),
		AppId:           c.appId,
		LoginProvider:   c.loginProvider,
		PaymentProvider: c.paymentProvider,
	}
}

// GetConfig 获取当前探测平台的配置
func GetConfig() Config {
	return ConfigFor(Detect())
}

// LoginParams 构造后端登录交换请求参数
// code 为宿主下发的一次性授权码
func LoginParams(code string, cfg Config) map[string]string {
	return map[string]string{
		"code":     code,
		"appId":    cfg.AppId,
		"platform": string(cfg.PayPlatform),
	}
}
