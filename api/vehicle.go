// Package api 后端接口的类型化封装
package api

import (
	"context"
	"fmt"

	"github.com/go-pay/gopay"
	"github.com/shopspring/decimal"

	"github.com/smart-unicom/rental/client"
)

// Vehicle 车辆信息
type Vehicle struct {
	Id           int64           `json:"id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Type         string          `json:"type"`       // 轿车/SUV 等
	EnergyType   string          `json:"energyType"` // 电动/混动
	Seats        int             `json:"seats"`
	DailyPrice   decimal.Decimal `json:"dailyPrice"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
	ImageUrl     string          `json:"imageUrl"`
	BatteryRange int             `json:"batteryRange"`
	Rating       float64         `json:"rating"`
	IsHot        bool            `json:"isHot"`
	IsNew        bool            `json:"isNew"`
	Tags         []string        `json:"tags"`
	Location     VehicleLocation `json:"location"`
}

// VehicleLocation 车辆所在位置
type VehicleLocation struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// VehicleSearchParams 车辆搜索条件
type VehicleSearchParams struct {
	City        string
	StartTime   string
	EndTime     string
	VehicleType string
	EnergyType  string
	SortBy      string // price / distance / rating
	Page        int
	Limit       int
}

// SearchVehicles 搜索车辆
func SearchVehicles(ctx context.Context, c *client.Client, p VehicleSearchParams) (*client.Page[Vehicle], error) {
	params := make(gopay.BodyMap)
	if p.City != "" {
		params.Set("city", p.City)
	}
	if p.StartTime != "" {
		params.Set("startTime", p.StartTime)
	}
	if p.EndTime != "" {
		params.Set("endTime", p.EndTime)
	}
	if p.VehicleType != "" {
		params.Set("vehicleType", p.VehicleType)
	}
	if p.EnergyType != "" {
		params.Set("energyType", p.EnergyType)
	}
	if p.SortBy != "" {
		params.Set("sortBy", p.SortBy)
	}
	if p.Page > 0 {
		params.Set("page", p.Page)
	}
	if p.Limit > 0 {
		params.Set("limit", p.Limit)
	}

	env, err := c.Get(ctx, "/api/vehicles/search", params)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	return client.BindPage[Vehicle](env)
}

// GetVehicle 查询车辆详情
func GetVehicle(ctx context.Context, c *client.Client, id int64) (*Vehicle, error) {
	env, err := c.Get(ctx, fmt.Sprintf("/api/vehicles/%d", id), nil)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, env.Err()
	}
	var v Vehicle
	if err := env.Bind(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
