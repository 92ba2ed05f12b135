// Package session 会话状态
// “谁在登录、持什么令牌、在哪个平台”的唯一事实来源，
// 跨进程重启持久化在本地存储里
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/smart-unicom/rental/logger"
	"github.com/smart-unicom/rental/platform"
	"github.com/smart-unicom/rental/storage"
)

// 持久化键名与有效期
const (
	keyUserInfo = "userInfo"
	keyToken    = "token"
	keyPlatform = "platform"

	persistTTL = 12 * time.Hour
)

// Profile 用户资料
type Profile struct {
	UserID       int64  `json:"userId"`
	OpenID       string `json:"openId,omitempty"`
	AlipayUserID string `json:"alipayUserId,omitempty"`
	Nickname     string `json:"nickname"`
	Avatar       string `json:"avatar"`
	Certified    bool   `json:"certified"` // 实名认证标记
	CreateTime   string `json:"createTime,omitempty"`
}

// PlatformUserID 当前平台的用户标识
// 支付宝平台取支付宝用户ID，其余平台取 openId
func (p *Profile) PlatformUserID(plat platform.Platform) string {
	if plat == platform.PlatformAlipay && p.AlipayUserID != "" {
		return p.AlipayUserID
	}
	return p.OpenID
}

// LoginResult 后端令牌交换结果
type LoginResult struct {
	Profile
	Token      string `json:"token"`
	SessionKey string `json:"sessionKey,omitempty"`
}

// ExchangeFunc 后端令牌交换函数
// 持宿主下发的一次性授权码换取令牌与用户资料
type ExchangeFunc func(ctx context.Context, code string, cfg platform.Config) (*LoginResult, error)

// ReauthenticationError 重登失败
type ReauthenticationError struct {
	Stage string // 失败环节：login / exchange
	Err   error
}

// Error 实现 error 接口
func (e *ReauthenticationError) Error() string {
	return fmt.Sprintf("re-login failed at %s: %v", e.Stage, e.Err)
}

// Unwrap 返回底层错误
func (e *ReauthenticationError) Unwrap() error { return e.Err }

// Session 会话存储
// 令牌是全模块唯一的共享可变状态：所有出站调用读它，
// 只有登录/重登/登出写它
type Session struct {
	mu       sync.RWMutex
	token    string
	profile  *Profile
	platform platform.Platform

	host     platform.Host
	store    *storage.Store
	exchange ExchangeFunc
	sf       singleflight.Group
	log      *zap.Logger
}

// New 创建新的会话实例
// 初始为未登录状态，通过 Restore 或 ReLogin 注入身份
func New(host platform.Host, store *storage.Store, exchange ExchangeFunc) *Session {
	return &Session{
		host:     host,
		store:    store,
		exchange: exchange,
		platform: host.Platform(),
		log:      logger.Z().Named("session"),
	}
}

// Token 当前令牌，空串表示未登录
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// LoggedIn 是否已登录，当且仅当令牌非空
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Profile 当前用户资料副本
func (s *Session) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Platform 会话所在的宿主平台
func (s *Session) Platform() platform.Platform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.platform
}

// Restore 从本地存储恢复会话
// 没有可恢复的状态时自动尝试一次登录，避免应用带着
// 静默失效的会话启动
func (s *Session) Restore(ctx context.Context) error {
	var (
		token   string
		profile Profile
		plat    platform.Platform
	)
	if s.store.Get(keyToken, &token) && token != "" && s.store.Get(keyUserInfo, &profile) {
		if !s.store.Get(keyPlatform, &plat) || !plat.Valid() {
			plat = s.host.Platform()
		}
		s.mu.Lock()
		s.token = token
		s.profile = &profile
		s.platform = plat
		s.mu.Unlock()
		s.log.Info("session restored", zap.String("platform", string(plat)))
		return nil
	}

	s.log.Info("no persisted session, attempting auto login")
	_, err := s.ReLogin(ctx)
	return err
}

// ReLogin 执行一次完整登录往返
// 宿主登录 → 后端令牌交换 → 持久化 → 更新内存状态。
// 并发调用共享同一次在途重登，而不是各自触发
func (s *Session) ReLogin(ctx context.Context) (*Profile, error) {
	v, err, _ := s.sf.Do("relogin", func() (interface{}, error) {
		// 共享航班不随首个调用方的取消而终止
		return s.doLogin(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Profile), nil
}

// Reauth 供请求客户端触发的重认证入口
func (s *Session) Reauth(ctx context.Context) error {
	_, err := s.ReLogin(ctx)
	return err
}

func (s *Session) doLogin(ctx context.Context) (*Profile, error) {
	code, err := s.host.Login(ctx)
	if err != nil {
		return nil, &ReauthenticationError{Stage: "login", Err: err}
	}

	res, err := s.exchange(ctx, code, s.host.Config())
	if err != nil {
		return nil, &ReauthenticationError{Stage: "exchange", Err: err}
	}
	if res == nil || res.Token == "" {
		return nil, &ReauthenticationError{Stage: "exchange", Err: fmt.Errorf("empty token in login response")}
	}

	profile := res.Profile
	s.mu.Lock()
	s.token = res.Token
	s.profile = &profile
	s.platform = s.host.Platform()
	s.mu.Unlock()

	s.persist()
	s.log.Info("login succeeded",
		zap.String("platform", string(s.host.Platform())),
		zap.Int64("userId", profile.UserID))
	p := profile
	return &p, nil
}

// Logout 清除内存与持久化的会话状态，可重复调用
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.profile = nil
	s.mu.Unlock()

	_ = s.store.Remove(keyToken)
	_ = s.store.Remove(keyUserInfo)
	_ = s.store.Remove(keyPlatform)
	s.log.Info("session cleared")
}

// ProfilePatch 用户资料的部分更新
// 只合并显式给出的字段
type ProfilePatch struct {
	Nickname  *string
	Avatar    *string
	Certified *bool
}

// UpdateProfile 合并部分资料字段并重新持久化
// 供资料编辑页面使用，认证核心不依赖它
func (s *Session) UpdateProfile(patch ProfilePatch) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return
	}
	if patch.Nickname != nil {
		s.profile.Nickname = *patch.Nickname
	}
	if patch.Avatar != nil {
		s.profile.Avatar = *patch.Avatar
	}
	if patch.Certified != nil {
		s.profile.Certified = *patch.Certified
	}
	s.mu.Unlock()

	s.persist()
}

// persist 写入本地存储
// 持久化尽力而为，失败只记日志不影响内存状态
func (s *Session) persist() {
	s.mu.RLock()
	token := s.token
	profile := s.profile
	plat := s.platform
	s.mu.RUnlock()

	if err := s.store.Set(keyToken, token, persistTTL); err != nil {
		s.log.Warn("persist token failed", zap.Error(err))
	}
	if profile != nil {
		if err := s.store.Set(keyUserInfo, profile, persistTTL); err != nil {
			s.log.Warn("persist profile failed", zap.Error(err))
		}
	}
	if err := s.store.Set(keyPlatform, plat, persistTTL); err != nil {
		s.log.Warn("persist platform failed", zap.Error(err))
	}
}
