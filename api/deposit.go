// Package api 后端接口的类型化封装
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smart-unicom/rental/client"
	"github.com/smart-unicom/rental/payment"
)

// DepositOrder 押金支付单
type DepositOrder struct {
	DepositOrderNo string          `json:"depositOrderNo"`
	OrderId        string          `json:"orderId"`
	Amount         decimal.Decimal `json:"amount"`
}

// DepositPayStatus 押金支付状态
type DepositPayStatus struct {
	Status        string `json:"status"`
	TransactionId string `json:"transactionId,omitempty"`
	PaymentTime   string `json:"paymentTime,omitempty"`
}

// CreateDepositPayOrder 创建押金支付单
// 请求体由编排器盖上 payType，响应的支付载荷归一化为
// 统一支付参数，可直接交给 Orchestrator.Request 调起支付
func CreateDepositPayOrder(ctx context.Context, c *client.Client, orch *payment.Orchestrator, orderNo, payerId string) (*payment.UnifiedPayParams, *DepositOrder, error) {
	body := orch.CreateParams(map[string]interface{}{
		"orderNo": orderNo,
		"openId":  payerId,
	})

	env, err := c.Post(ctx, "/api/pay/deposit/create", nil, body)
	if err != nil {
		return nil, nil, err
	}
	if !env.OK() {
		return nil, nil, env.Err()
	}

	params, err := orch.NormalizeJSON(env.Data)
	if err != nil {
		return nil, nil, err
	}
	var order DepositOrder
	if err := env.Bind(&order); err != nil {
		return nil, nil, err
	}
	return params, &order, nil
}

// QueryDepositPayStatus 查询押金支付状态
func QueryDepositPayStatus(ctx context.Context, c *client.Client, depositOrderNo string) (*DepositPayStatus, error) {
	env, err := c.Get(ctx, fmt.Sprintf("/api/pay/query/%s", depositOrderNo), nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var status DepositPayStatus
	if err := env.Bind(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
