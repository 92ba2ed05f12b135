// Package client 鉴权请求客户端
package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// 业务状态码常量定义
// 结果判定看的是信封里的业务码，与传输层状态码无关
const (
	CodeSuccess      = 200 // 成功
	CodeUnauthorized = 401 // 未授权，触发一次重登重试
	CodeServerError  = 500 // 服务端错误，提示用户并拒绝
)

// Envelope 服务端统一响应信封
// 每个接口都返回 {code, msg, data}
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// UnmarshalJSON 兼容数字与字符串两种形式的业务码
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var aux struct {
		Code interface{}     `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Code = cast.ToInt(aux.Code)
	e.Msg = aux.Msg
	e.Data = aux.Data
	return nil
}

// OK 业务是否成功
func (e *Envelope) OK() bool { return e.Code == CodeSuccess }

// Bind 将 data 解码到目标结构
func (e *Envelope) Bind(dest interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return errors.New("client: envelope carries no data")
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("client: decode envelope data: %w", err)
	}
	return nil
}

// Err 将非成功信封转为可选的类型化错误视图
// 未归类的历史业务码不强行建模，调用方按需检查
func (e *Envelope) Err() error {
	if e.OK() {
		return nil
	}
	return &BizError{Code: e.Code, Msg: e.Msg}
}

// Page 分页响应结构
type Page[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Size    int64 `json:"size"`
	Current int64 `json:"current"`
	Pages   int64 `json:"pages"`
}

// BindPage 将分页信封解码为 Page
func BindPage[T any](e *Envelope) (*Page[T], error) {
	var page Page[T]
	if err := e.Bind(&page); err != nil {
		return nil, err
	}
	return &page, nil
}
