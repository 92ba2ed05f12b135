// Package api 后端接口的类型化封装
package api

import (
	"context"

	"github.com/go-pay/gopay"
	"github.com/shopspring/decimal"

	"github.com/smart-unicom/rental/client"
)

// Bill 账单记录
type Bill struct {
	BillId     int64           `json:"billId"`
	OrderNo    string          `json:"orderNo"`
	Type       string          `json:"type"` // rental / deposit / refund
	Amount     decimal.Decimal `json:"amount"`
	Direction  string          `json:"direction"` // in / out
	Remark     string          `json:"remark"`
	CreateTime string          `json:"createTime"`
}

// ListBills 分页查询账单
func ListBills(ctx context.Context, c *client.Client, current, size int) (*client.Page[Bill], error) {
	params := make(gopay.BodyMap)
	if current > 0 {
		params.Set("current", current)
	}
	if size > 0 {
		params.Set("size", size)
	}
	env, err := c.Get(ctx, "/api/bills", params)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	return client.BindPage[Bill](env)
}
