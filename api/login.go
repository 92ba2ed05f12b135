// Package api 后端接口的类型化封装
// 每个文件对应一组后端资源，只做请求组装与响应解码，
// 不承载业务逻辑
package api

import (
	"context"
	"fmt"

	"github.com/go-pay/gopay"

	"github.com/smart-unicom/rental/client"
	"github.com/smart-unicom/rental/platform"
	"github.com/smart-unicom/rental/session"
)

// Login 用授权码向后端交换令牌与用户资料
func Login(ctx context.Context, c *client.Client, code string, cfg platform.Config) (*session.LoginResult, error) {
	params := make(gopay.BodyMap)
	for k, v := range platform.LoginParams(code, cfg) {
		params.Set(k, v)
	}
	env, err := c.Post(ctx, "/wechat/login", params, nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, fmt.Errorf("login rejected: %s", env.Msg)
	}
	var res session.LoginResult
	if err := env.Bind(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Exchange 返回会话重登所用的令牌交换函数
// 传入的客户端应为匿名客户端，登录交换本身不带鉴权、
// 也不参与重登重试
func Exchange(c *client.Client) session.ExchangeFunc {
	return func(ctx context.Context, code string, cfg platform.Config) (*session.LoginResult, error) {
		return Login(ctx, c, code, cfg)
	}
}
