// Package api 后端接口的类型化封装
package api

import (
	"context"
	"fmt"

	"github.com/go-pay/gopay"

	"github.com/smart-unicom/rental/client"
)

// CustomerVisit 客户拜访记录（CRM 变体）
type CustomerVisit struct {
	VisitId      int64    `json:"visitId"`
	CustomerId   int64    `json:"customerId"`
	CustomerName string   `json:"customerName"`
	VisitType    string   `json:"visitType"`
	VisitTime    string   `json:"visitTime"`
	Address      string   `json:"address"`
	Content      string   `json:"content"`
	Images       []string `json:"images,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
	CreateTime   string   `json:"createTime"`
}

// VisitSubmit 拜访提交请求
type VisitSubmit struct {
	CustomerId int64    `json:"customerId"`
	VisitType  string   `json:"visitType"`
	VisitTime  string   `json:"visitTime"`
	Address    string   `json:"address"`
	Latitude   float64  `json:"latitude,omitempty"`
	Longitude  float64  `json:"longitude,omitempty"`
	Content    string   `json:"content"`
	Images     []string `json:"images,omitempty"`
	Outcome    string   `json:"outcome,omitempty"`
}

// ListVisits 分页查询拜访记录
func ListVisits(ctx context.Context, c *client.Client, customerId int64, current, size int) (*client.Page[CustomerVisit], error) {
	params := make(gopay.BodyMap)
	if customerId > 0 {
		params.Set("customerId", customerId)
	}
	if current > 0 {
		params.Set("current", current)
	}
	if size > 0 {
		params.Set("size", size)
	}
	env, err := c.Get(ctx, "/api/customer-visits", params)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	return client.BindPage[CustomerVisit](env)
}

// SubmitVisit 提交拜访记录
func SubmitVisit(ctx context.Context, c *client.Client, req *VisitSubmit) (*CustomerVisit, error) {
	env, err := c.Post(ctx, "/api/customer-visits", nil, req)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var visit CustomerVisit
	if err := env.Bind(&visit); err != nil {
		return nil, err
	}
	return &visit, nil
}

// GetVisit 查询拜访详情
func GetVisit(ctx context.Context, c *client.Client, visitId int64) (*CustomerVisit, error) {
	env, err := c.Get(ctx, fmt.Sprintf("/api/customer-visits/%d", visitId), nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var visit CustomerVisit
	if err := env.Bind(&visit); err != nil {
		return nil, err
	}
	return &visit, nil
}
