package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-pay/gopay"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSession 记录重登与登出调用的会话桩
type stubSession struct {
	token     string
	nextToken string
	reauthErr error

	reauthCalls int32
	logoutCalls int32
}

func (s *stubSession) Token() string { return s.token }

func (s *stubSession) Reauth(ctx context.Context) error {
	atomic.AddInt32(&s.reauthCalls, 1)
	if s.reauthErr != nil {
		return s.reauthErr
	}
	s.token = s.nextToken
	return nil
}

func (s *stubSession) Logout() {
	atomic.AddInt32(&s.logoutCalls, 1)
	s.token = ""
}

// stubNotifier 记录 toast 的通知桩
type stubNotifier struct {
	messages []string
}

func (n *stubNotifier) Toast(msg string) { n.messages = append(n.messages, msg) }

func envelope(code int, msg string, data interface{}) string {
	raw, _ := json.Marshal(map[string]interface{}{"code": code, "msg": msg, "data": data})
	return string(raw)
}

func TestGetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/vehicles/search", r.URL.Path)
		assert.Equal(t, "beijing", r.URL.Query().Get("city"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		fmt.Fprint(w, envelope(200, "ok", map[string]string{"hello": "world"}))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubSession{token: "tok-1"})
	params := make(gopay.BodyMap)
	params.Set("city", "beijing")

	env, err := c.Get(context.Background(), "/api/vehicles/search", params)
	require.NoError(t, err)
	assert.True(t, env.OK())

	var data map[string]string
	require.NoError(t, env.Bind(&data))
	assert.Equal(t, "world", data["hello"])
}

func TestUnauthorizedRetryOnce(t *testing.T) {
	var tokens []string
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		if len(tokens) == 1 {
			fmt.Fprint(w, envelope(401, "token expired", nil))
			return
		}
		fmt.Fprint(w, envelope(200, "ok", nil))
	}))
	defer srv.Close()

	sess := &stubSession{token: "stale", nextToken: "fresh"}
	c := New(srv.URL, sess)

	env, err := c.Post(context.Background(), "/api/bookings", nil, map[string]string{"vehicleId": "7"})
	require.NoError(t, err)
	assert.True(t, env.OK())

	// 重登一次后以新令牌原样重放
	require.Len(t, tokens, 2)
	assert.Equal(t, "Bearer stale", tokens[0])
	assert.Equal(t, "Bearer fresh", tokens[1])
	assert.Equal(t, bodies[0], bodies[1])
	assert.EqualValues(t, 1, sess.reauthCalls)
	assert.EqualValues(t, 0, sess.logoutCalls)
}

func TestUnauthorizedPersistent(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, envelope(401, "still no", nil))
	}))
	defer srv.Close()

	sess := &stubSession{token: "stale", nextToken: "fresh"}
	c := New(srv.URL, sess)

	_, err := c.Get(context.Background(), "/api/orders", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// 重登成功但重放仍 401，只重试一次，不进入循环
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 1, sess.reauthCalls)
}

func TestUnauthorizedReauthFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, envelope(401, "token expired", nil))
	}))
	defer srv.Close()

	sess := &stubSession{token: "stale", reauthErr: errors.New("native login denied")}
	notifier := &stubNotifier{}
	c := New(srv.URL, sess, WithNotifier(notifier))

	_, err := c.Get(context.Background(), "/api/orders", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrSessionExpired.Error())

	// 重登失败：登出、提示用户、不再重放
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, sess.logoutCalls)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "重新登录")
}

func TestAnonymousClientNeverRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, envelope(401, "no token", nil))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	env, err := c.Get(context.Background(), "/wechat/login", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, CodeUnauthorized, env.Code)
	assert.EqualValues(t, 1, hits)
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(500, "库存不足", nil))
	}))
	defer srv.Close()

	notifier := &stubNotifier{}
	c := New(srv.URL, &stubSession{token: "t"}, WithNotifier(notifier))

	env, err := c.Post(context.Background(), "/api/bookings", nil, nil)
	require.Error(t, err)

	var bizErr *BizError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, 500, bizErr.Code)
	assert.Equal(t, "库存不足", bizErr.Msg)

	// 服务端提示直接展示给用户
	assert.Equal(t, []string{"库存不足"}, notifier.messages)
	assert.Equal(t, CodeServerError, env.Code)
}

func TestLegacyCodePassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(403, "audit pending", nil))
	}))
	defer srv.Close()

	c := New(srv.URL, &stubSession{token: "t"})
	env, err := c.Get(context.Background(), "/api/profile", nil)

	// 未归类的业务码不建模为错误，原样交还
	require.NoError(t, err)
	assert.Equal(t, 403, env.Code)
	assert.Equal(t, "audit pending", env.Msg)
}

func TestTransportErrorNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 立刻关掉，制造连接拒绝

	sess := &stubSession{token: "t"}
	c := New(srv.URL, sess)

	_, err := c.Get(context.Background(), "/api/orders", nil)
	require.Error(t, err)
	assert.EqualValues(t, 0, sess.reauthCalls)
}

func TestEnvelopeStringCode(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"code":"200","msg":"ok","data":{"a":1}}`), &env))
	assert.True(t, env.OK())
}

func TestEnvelopeBindEmptyData(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"code":200,"msg":"ok","data":null}`), &env))
	var dest map[string]interface{}
	assert.Error(t, env.Bind(&dest))
}

func TestBindPage(t *testing.T) {
	var env Envelope
	raw := `{"code":200,"msg":"ok","data":{"records":[{"id":1},{"id":2}],"total":2,"size":10,"current":1,"pages":1}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &env))

	type row struct {
		Id int64 `json:"id"`
	}
	page, err := BindPage[row](&env)
	require.NoError(t, err)
	assert.Len(t, page.Records, 2)
	assert.EqualValues(t, 2, page.Total)
}
