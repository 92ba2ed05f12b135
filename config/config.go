// Package config 客户端配置
// 通过 viper 从配置文件与 RENTAL_ 前缀环境变量装载
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/smart-unicom/rental/logger"
	"github.com/smart-unicom/rental/platform"
)

// Config 客户端配置结构
type Config struct {
	Mode     string         `mapstructure:"mode"` // debug / release
	API      APIConfig      `mapstructure:"api"`
	Platform PlatformConfig `mapstructure:"platform"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig 后端接口配置
type APIConfig struct {
	Host           string `mapstructure:"host"`            // 后端地址，如 https://car-dev.zeabur.app
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // 请求超时，缺省 30 秒
}

// PlatformConfig 平台注册配置
type PlatformConfig struct {
	WechatAppId string `mapstructure:"wechat_app_id"`
	AlipayAppId string `mapstructure:"alipay_app_id"`
}

// OSSConfig 对象存储直传配置
type OSSConfig struct {
	Bucket  string `mapstructure:"bucket"`
	Region  string `mapstructure:"region"`
	BaseDir string `mapstructure:"base_dir"`
}

// StorageConfig 本地持久化配置
type StorageConfig struct {
	Path string `mapstructure:"path"` // sqlite 文件路径
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// Host 返回后端地址（去掉末尾斜杠）
func (c *Config) Host() string {
	return strings.TrimRight(strings.TrimSpace(c.API.Host), "/")
}

// Load 装载配置
// path 为空时在当前目录查找 config.yaml
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("RENTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 允许纯环境变量运行，仅在显式指定文件时视为错误
		if path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	apply(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("api.host", "https://car-dev.zeabur.app")
	v.SetDefault("api.timeout_seconds", 30)
	v.SetDefault("storage.path", "rental.db")
	v.SetDefault("oss.base_dir", "uploads")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.filename", "rental.log")
}

// apply 将装载结果同步到依赖包
func apply(cfg *Config) {
	platform.SetAppId(platform.PlatformWechat, cfg.Platform.WechatAppId)
	platform.SetAppId(platform.PlatformAlipay, cfg.Platform.AlipayAppId)
}
