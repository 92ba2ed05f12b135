// Package api 后端接口的类型化封装
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smart-unicom/rental/client"
)

// BookingRequest 预订请求
type BookingRequest struct {
	VehicleId          int64           `json:"vehicleId"`
	StartTime          string          `json:"startTime"`
	EndTime            string          `json:"endTime"`
	PickupMethod       string          `json:"pickupMethod"` // self 自取 / delivery 送车
	PickupLocation     string          `json:"pickupLocation,omitempty"`
	DeliveryAddress    string          `json:"deliveryAddress,omitempty"`
	InsuranceProductId string          `json:"insuranceProductId,omitempty"`
	ServiceIds         []string        `json:"serviceIds,omitempty"`
	UserCouponId       int64           `json:"userCouponId,omitempty"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	DiscountAmount     decimal.Decimal `json:"discountAmount"`
	FinalAmount        decimal.Decimal `json:"finalAmount"`
	Remarks            string          `json:"remarks,omitempty"`
}

// BookingResult 预订结果
type BookingResult struct {
	OrderId int64  `json:"orderId"`
	OrderNo string `json:"orderNo"`
}

// CreateBooking 创建预订
func CreateBooking(ctx context.Context, c *client.Client, req *BookingRequest) (*BookingResult, error) {
	env, err := c.Post(ctx, "/api/bookings", nil, req)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var res BookingResult
	if err := env.Bind(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CancelBooking 取消预订
func CancelBooking(ctx context.Context, c *client.Client, orderNo string, reason string) error {
	env, err := c.Post(ctx, fmt.Sprintf("/api/bookings/%s/cancel", orderNo), nil, map[string]string{
		"reason": reason,
	})
	if err != nil {
		return err
	}
	return env.Err()
}
