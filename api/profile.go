// Package api 后端接口的类型化封装
package api

import (
	"context"

	"github.com/smart-unicom/rental/client"
	"github.com/smart-unicom/rental/session"
)

// ProfileUpdate 资料更新请求
type ProfileUpdate struct {
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// GetProfile 查询当前用户资料
func GetProfile(ctx context.Context, c *client.Client) (*session.Profile, error) {
	env, err := c.Get(ctx, "/api/profile", nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var p session.Profile
	if err := env.Bind(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile 更新当前用户资料
func UpdateProfile(ctx context.Context, c *client.Client, req *ProfileUpdate) error {
	env, err := c.Put(ctx, "/api/profile", nil, req)
	if err != nil {
		return err
	}
	return env.Err()
}
