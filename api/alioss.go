// Package api 后端接口的类型化封装
package api

import (
	"context"

	"github.com/go-pay/gopay"

	"github.com/smart-unicom/rental/client"
)

// STSCredential 对象存储直传的临时凭证
type STSCredential struct {
	AccessKeyId     string `json:"accessKeyId"`
	AccessKeySecret string `json:"accessKeySecret"`
	SecurityToken   string `json:"securityToken"`
	Expiration      string `json:"expiration"` // RFC3339
	Host            string `json:"host"`       // 直传目标地址
}

// GetStsToken 获取对象存储临时凭证
func GetStsToken(ctx context.Context, c *client.Client, payerId string) (*STSCredential, error) {
	params := make(gopay.BodyMap)
	params.Set("openId", payerId)

	env, err := c.Get(ctx, "/api/oss/sts", params)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var cred STSCredential
	if err := env.Bind(&cred); err != nil {
		return nil, err
	}
	return &cred, nil
}
