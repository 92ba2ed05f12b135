// Package client 鉴权请求客户端
// 为每次出站调用附加 Bearer 令牌，按响应信封的业务码判定结果；
// 收到未授权信号时透明地重登并重放原请求一次
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pay/gopay"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smart-unicom/rental/logger"
)

// 固定请求超时；超时按传输错误处理，不触发重试
const defaultTimeout = 30 * time.Second

// Session 客户端依赖的会话能力
// 客户端只读令牌并在未授权时触发重认证
type Session interface {
	// Token 当前令牌，空串表示未登录
	Token() string

	// Reauth 执行一次完整重登
	Reauth(ctx context.Context) error

	// Logout 清除会话
	Logout()
}

// Client 鉴权请求客户端
type Client struct {
	host     string
	http     *http.Client
	sess     Session
	notifier Notifier
	log      *zap.Logger
}

// Option 客户端可选配置
type Option func(*Client)

// WithNotifier 注入用户消息通知实现
func WithNotifier(n Notifier) Option {
	return func(c *Client) { c.notifier = n }
}

// WithTimeout 覆盖固定请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient 注入自定义 HTTP 客户端
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New 创建新的鉴权请求客户端实例
// sess 允许为 nil：匿名客户端不带令牌、不做重登重试，
// 供登录交换等无鉴权调用使用
func New(host string, sess Session, opts ...Option) *Client {
	c := &Client{
		host: strings.TrimRight(host, "/"),
		http: &http.Client{Timeout: defaultTimeout},
		sess: sess,
		log:  logger.Z().Named("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = &logNotifier{log: c.log}
	}
	return c
}

// request 一次在途调用的完整描述，用于未授权后的原样重放
type request struct {
	method string
	path   string
	params gopay.BodyMap
	body   interface{}
}

// Get 发起 GET 请求
func (c *Client) Get(ctx context.Context, path string, params gopay.BodyMap) (*Envelope, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, params: params}, false)
}

// Post 发起 POST 请求
func (c *Client) Post(ctx context.Context, path string, params gopay.BodyMap, body interface{}) (*Envelope, error) {
	return c.do(ctx, request{method: http.MethodPost, path: path, params: params, body: body}, false)
}

// Put 发起 PUT 请求
func (c *Client) Put(ctx context.Context, path string, params gopay.BodyMap, body interface{}) (*Envelope, error) {
	return c.do(ctx, request{method: http.MethodPut, path: path, params: params, body: body}, false)
}

// Delete 发起 DELETE 请求
func (c *Client) Delete(ctx context.Context, path string, params gopay.BodyMap) (*Envelope, error) {
	return c.do(ctx, request{method: http.MethodDelete, path: path, params: params}, false)
}

// do 执行一次调用
// retried 标记本调用是否已经经历过一次重登重放，
// 保证每个发起调用至多一次重认证，杜绝 401 循环
func (c *Client) do(ctx context.Context, req request, retried bool) (*Envelope, error) {
	env, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}

	switch env.Code {
	case CodeUnauthorized:
		if retried || c.sess == nil {
			return env, errors.Wrapf(ErrUnauthorized, "%s %s", req.method, req.path)
		}
		c.log.Info("token expired, attempting to re-login",
			zap.String("method", req.method), zap.String("path", req.path))
		if reauthErr := c.sess.Reauth(ctx); reauthErr != nil {
			c.log.Error("re-login failed", zap.Error(reauthErr))
			c.sess.Logout()
			c.notifier.Toast("登录已过期，请重新登录")
			return nil, errors.Wrap(reauthErr, ErrSessionExpired.Error())
		}
		c.log.Info("re-login successful, retrying request",
			zap.String("method", req.method), zap.String("path", req.path))
		return c.do(ctx, req, true)
	case CodeServerError:
		c.notifier.Toast(env.Msg)
		return env, &BizError{Code: env.Code, Msg: env.Msg}
	default:
		// 成功与未归类的历史业务码都原样交给调用方
		return env, nil
	}
}

// send 发送单个 HTTP 请求并解析响应信封
func (c *Client) send(ctx context.Context, req request) (*Envelope, error) {
	u := c.host + req.path
	if len(req.params) > 0 {
		u += "?" + req.params.EncodeURLParams()
	}

	var bodyReader io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())
	if c.sess != nil {
		if token := c.sess.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "client: %s %s", req.method, req.path)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "client: read response of %s", req.path)
	}

	var env Envelope
	if err := json.Unmarshal(respBytes, &env); err != nil {
		return nil, errors.Wrapf(err, "client: decode envelope of %s", req.path)
	}
	c.log.Debug("request done",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("code", env.Code))
	return &env, nil
}
