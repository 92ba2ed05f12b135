// Package storage 本地持久化键值存储
// 会话令牌、用户资料与临时凭证落在设备本地的 sqlite 文件中，
// 支持按键独立写入/删除与可选的过期时间
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// kvEntry 键值存储表
type kvEntry struct {
	Key       string `gorm:"column:k;primaryKey;size:128"`
	Value     []byte `gorm:"column:v"`
	ExpiresAt int64  `gorm:"column:expires_at"` // 0 表示永不过期，毫秒时间戳
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime:milli"`
}

// TableName 指定表名
func (kvEntry) TableName() string { return "kv_entries" }

// Store 本地键值存储
type Store struct {
	db *gorm.DB
}

// Open 打开本地存储
// 文件不存在时自动创建并迁移表结构
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrate storage: %w", err)
	}
	return &Store{db: db}, nil
}

// Set 写入键值
// ttl 为 0 表示永不过期；值以 JSON 编码存储
func (s *Store) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UnixMilli()
	}
	entry := kvEntry{Key: key, Value: data, ExpiresAt: expiresAt}
	if err := s.db.Save(&entry).Error; err != nil {
		return fmt.Errorf("storage set %s: %w", key, err)
	}
	return nil
}

// Get 读取键值
// 键不存在或已过期返回 false；过期条目在读取时删除
func (s *Store) Get(key string, dest interface{}) bool {
	var entry kvEntry
	if err := s.db.First(&entry, "k = ?", key).Error; err != nil {
		return false
	}
	if entry.ExpiresAt > 0 && entry.ExpiresAt <= time.Now().UnixMilli() {
		_ = s.Remove(key)
		return false
	}
	if dest == nil {
		return true
	}
	return json.Unmarshal(entry.Value, dest) == nil
}

// Remove 删除键值，键不存在时为空操作
func (s *Store) Remove(key string) error {
	return s.db.Delete(&kvEntry{}, "k = ?", key).Error
}

// Close 关闭底层数据库连接
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
