package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smart-unicom/rental/platform"
	"github.com/smart-unicom/rental/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// countingExchange 记录调用次数的令牌交换桩
type countingExchange struct {
	calls int32
	delay time.Duration
	err   error
	res   LoginResult
}

func (e *countingExchange) fn() ExchangeFunc {
	return func(ctx context.Context, code string, cfg platform.Config) (*LoginResult, error) {
		atomic.AddInt32(&e.calls, 1)
		if e.delay > 0 {
			time.Sleep(e.delay)
		}
		if e.err != nil {
			return nil, e.err
		}
		res := e.res
		return &res, nil
	}
}

func validExchange() *countingExchange {
	return &countingExchange{res: LoginResult{
		Profile: Profile{UserID: 42, OpenID: "oX9y", Nickname: "租客"},
		Token:   "tok-abc",
	}}
}

func TestReLogin(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("auth-code"))
	ex := validExchange()
	sess := New(host, store, ex.fn())

	require.False(t, sess.LoggedIn())

	profile, err := sess.ReLogin(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 42, profile.UserID)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, "tok-abc", sess.Token())
	assert.Equal(t, platform.PlatformWechat, sess.Platform())
}

func TestRestoreFromStore(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("auth-code"))
	ex := validExchange()

	// 先登录并持久化
	first := New(host, store, ex.fn())
	_, err := first.ReLogin(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, ex.calls)

	// 新会话从存储恢复，不触发网络往返
	second := New(host, store, ex.fn())
	require.NoError(t, second.Restore(context.Background()))
	assert.EqualValues(t, 1, ex.calls)
	assert.Equal(t, "tok-abc", second.Token())

	profile := second.Profile()
	require.NotNil(t, profile)
	assert.EqualValues(t, 42, profile.UserID)
	assert.Equal(t, "租客", profile.Nickname)
}

func TestRestoreEmptyStoreAutoLogin(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformAlipay, platform.NewStubBridge("auth-code"))
	ex := validExchange()
	sess := New(host, store, ex.fn())

	require.NoError(t, sess.Restore(context.Background()))
	assert.EqualValues(t, 1, ex.calls)
	assert.True(t, sess.LoggedIn())
	assert.Equal(t, platform.PlatformAlipay, sess.Platform())
}

func TestLogout(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("auth-code"))
	ex := validExchange()
	sess := New(host, store, ex.fn())

	_, err := sess.ReLogin(context.Background())
	require.NoError(t, err)

	sess.Logout()
	assert.False(t, sess.LoggedIn())
	assert.Nil(t, sess.Profile())

	// 登出后不可恢复：再次 Restore 走自动登录
	fresh := New(host, store, ex.fn())
	require.NoError(t, fresh.Restore(context.Background()))
	assert.EqualValues(t, 2, ex.calls)

	// 可重复调用
	sess.Logout()
	assert.False(t, sess.LoggedIn())
}

func TestConcurrentReauthShareFlight(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("auth-code"))
	ex := validExchange()
	ex.delay = 50 * time.Millisecond
	sess := New(host, store, ex.fn())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sess.Reauth(context.Background()))
		}()
	}
	wg.Wait()

	// 并发重登共享同一次在途往返
	assert.EqualValues(t, 1, ex.calls)
	assert.True(t, sess.LoggedIn())
}

func TestReLoginFailures(t *testing.T) {
	store := openTestStore(t)

	t.Run("宿主登录失败", func(t *testing.T) {
		bridge := platform.NewStubBridge("")
		bridge.LoginErr = errors.New("user denied")
		sess := New(platform.NewHost(platform.PlatformWechat, bridge), store, validExchange().fn())

		_, err := sess.ReLogin(context.Background())
		var reauthErr *ReauthenticationError
		require.ErrorAs(t, err, &reauthErr)
		assert.Equal(t, "login", reauthErr.Stage)
		assert.False(t, sess.LoggedIn())
	})

	t.Run("令牌交换失败", func(t *testing.T) {
		ex := &countingExchange{err: errors.New("code already used")}
		sess := New(platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("c")), store, ex.fn())

		_, err := sess.ReLogin(context.Background())
		var reauthErr *ReauthenticationError
		require.ErrorAs(t, err, &reauthErr)
		assert.Equal(t, "exchange", reauthErr.Stage)
	})

	t.Run("交换返回空令牌", func(t *testing.T) {
		ex := &countingExchange{res: LoginResult{Profile: Profile{UserID: 1}}}
		sess := New(platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("c")), store, ex.fn())

		_, err := sess.ReLogin(context.Background())
		var reauthErr *ReauthenticationError
		require.ErrorAs(t, err, &reauthErr)
		assert.Equal(t, "exchange", reauthErr.Stage)
	})
}

func TestUpdateProfile(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("auth-code"))
	ex := validExchange()
	sess := New(host, store, ex.fn())

	_, err := sess.ReLogin(context.Background())
	require.NoError(t, err)

	nick := "新昵称"
	certified := true
	sess.UpdateProfile(ProfilePatch{Nickname: &nick, Certified: &certified})

	p := sess.Profile()
	assert.Equal(t, "新昵称", p.Nickname)
	assert.True(t, p.Certified)
	// 未给出的字段保持原值
	assert.Equal(t, "oX9y", p.OpenID)

	// 合并结果随会话一起持久化
	fresh := New(host, store, ex.fn())
	require.NoError(t, fresh.Restore(context.Background()))
	assert.EqualValues(t, 1, ex.calls)
	assert.Equal(t, "新昵称", fresh.Profile().Nickname)
}

func TestUpdateProfileWithoutLogin(t *testing.T) {
	store := openTestStore(t)
	host := platform.NewHost(platform.PlatformWechat, platform.NewStubBridge("c"))
	sess := New(host, store, validExchange().fn())

	nick := "游客"
	sess.UpdateProfile(ProfilePatch{Nickname: &nick})
	assert.Nil(t, sess.Profile())
}

func TestPlatformUserID(t *testing.T) {
	p := &Profile{OpenID: "wx-open", AlipayUserID: "ali-2088"}
	assert.Equal(t, "ali-2088", p.PlatformUserID(platform.PlatformAlipay))
	assert.Equal(t, "wx-open", p.PlatformUserID(platform.PlatformWechat))

	noAli := &Profile{OpenID: "wx-open"}
	assert.Equal(t, "wx-open", noAli.PlatformUserID(platform.PlatformAlipay))
}
