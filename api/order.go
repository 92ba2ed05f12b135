// Package api 后端接口的类型化封装
package api

import (
	"context"
	"fmt"

	"github.com/go-pay/gopay"
	"github.com/shopspring/decimal"

	"github.com/smart-unicom/rental/client"
)

// 订单状态常量定义
const (
	OrderStatusPendingPayment = "pending_payment" // 待支付
	OrderStatusPaid           = "paid"            // 已支付
	OrderStatusInUse          = "in_use"          // 用车中
	OrderStatusCompleted      = "completed"       // 已完成
	OrderStatusCancelled      = "cancelled"       // 已取消
)

// Order 订单信息
type Order struct {
	OrderId     int64           `json:"orderId"`
	OrderNo     string          `json:"orderNo"`
	VehicleId   int64           `json:"vehicleId"`
	VehicleName string          `json:"vehicleName"`
	StartTime   string          `json:"startTime"`
	EndTime     string          `json:"endTime"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	FinalAmount decimal.Decimal `json:"finalAmount"`
	CreateTime  string          `json:"createTime"`
}

// OrderListParams 订单列表查询条件
type OrderListParams struct {
	Status  string
	Current int
	Size    int
}

// ListOrders 分页查询订单
func ListOrders(ctx context.Context, c *client.Client, p OrderListParams) (*client.Page[Order], error) {
	params := make(gopay.BodyMap)
	if p.Status != "" {
		params.Set("status", p.Status)
	}
	if p.Current > 0 {
		params.Set("current", p.Current)
	}
	if p.Size > 0 {
		params.Set("size", p.Size)
	}

	env, err := c.Get(ctx, "/api/orders", params)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	return client.BindPage[Order](env)
}

// GetOrder 查询订单详情
func GetOrder(ctx context.Context, c *client.Client, orderNo string) (*Order, error) {
	env, err := c.Get(ctx, fmt.Sprintf("/api/orders/%s", orderNo), nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var o Order
	if err := env.Bind(&o); err != nil {
		return nil, err
	}
	return &o, nil
}
