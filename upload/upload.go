// Package upload 对象存储直传
// 从后端取 STS 临时凭证（本地缓存一小时），以 post-policy
// 签名表单把文件直传到存储桶，返回可访问的文件地址
package upload

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smart-unicom/rental/api"
	"github.com/smart-unicom/rental/client"
	"github.com/smart-unicom/rental/logger"
	"github.com/smart-unicom/rental/storage"
)

// Kind 上传文件类型，决定对象键前缀
type Kind string

// 上传类型常量定义
const (
	KindAvatar         Kind = "avatars"
	KindIdCard         Kind = "documents/id-cards"
	KindDrivingLicense Kind = "documents/driving-licenses"
	KindVehicleImage   Kind = "vehicles/images"
	KindOther          Kind = "others"
)

const (
	credentialKey  = "credentials"
	credentialTTL  = time.Hour
	maxObjectBytes = 1 << 30 // post-policy 限制单文件 1GB
	uploadTimeout  = 60 * time.Second
)

// Manager 直传管理器
type Manager struct {
	c       *client.Client
	store   *storage.Store
	payerId func() string // 凭证申请携带的用户标识
	http    *http.Client
	log     *zap.Logger
}

// New 创建新的直传管理器实例
func New(c *client.Client, store *storage.Store, payerId func() string) *Manager {
	return &Manager{
		c:       c,
		store:   store,
		payerId: payerId,
		http:    &http.Client{Timeout: uploadTimeout},
		log:     logger.Z().Named("upload"),
	}
}

// File 上传本地文件
// 对象键为 <kind>/<uuid>.<ext>，返回文件的公开访问地址
func (m *Manager) File(ctx context.Context, localPath string, kind Kind) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", errors.Wrap(err, "upload: read file")
	}
	ext := strings.TrimPrefix(path.Ext(localPath), ".")
	if ext == "" {
		ext = "jpg"
	}
	objectKey := fmt.Sprintf("%s/%s.%s", kind, uuid.NewString(), ext)
	return m.Bytes(ctx, objectKey, data)
}

// Bytes 以指定对象键上传内容
func (m *Manager) Bytes(ctx context.Context, objectKey string, data []byte) (string, error) {
	cred, err := m.credential(ctx)
	if err != nil {
		return "", err
	}

	policy := buildPolicy(cred.Expiration)
	signature := signPolicy(policy, cred.AccessKeySecret)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := map[string]string{
		"key":                   objectKey,
		"policy":                policy,
		"OSSAccessKeyId":        cred.AccessKeyId,
		"signature":             signature,
		"x-oss-security-token":  cred.SecurityToken,
		"success_action_status": "200",
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return "", errors.Wrap(err, "upload: build form")
		}
	}
	fw, err := form.CreateFormFile("file", path.Base(objectKey))
	if err != nil {
		return "", errors.Wrap(err, "upload: build form")
	}
	if _, err := fw.Write(data); err != nil {
		return "", errors.Wrap(err, "upload: build form")
	}
	if err := form.Close(); err != nil {
		return "", errors.Wrap(err, "upload: build form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cred.Host, &buf)
	if err != nil {
		return "", errors.Wrap(err, "upload: build request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := m.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "upload: post form")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("upload: bucket rejected with %d: %s", resp.StatusCode, string(body))
	}

	url := strings.TrimRight(cred.Host, "/") + "/" + objectKey
	m.log.Info("file uploaded", zap.String("object", objectKey))
	return url, nil
}

// credential 获取直传凭证，本地缓存一小时
func (m *Manager) credential(ctx context.Context) (*api.STSCredential, error) {
	var cred api.STSCredential
	if m.store.Get(credentialKey, &cred) && cred.AccessKeyId != "" {
		return &cred, nil
	}

	payerId := ""
	if m.payerId != nil {
		payerId = m.payerId()
	}
	fresh, err := api.GetStsToken(ctx, m.c, payerId)
	if err != nil {
		return nil, errors.Wrap(err, "upload: fetch sts token")
	}
	if err := m.store.Set(credentialKey, fresh, credentialTTL); err != nil {
		m.log.Warn("cache sts credential failed", zap.Error(err))
	}
	return fresh, nil
}

// buildPolicy 构造 base64 编码的 post-policy
func buildPolicy(expiration string) string {
	policy := map[string]interface{}{
		"expiration": expiration,
		"conditions": []interface{}{
			[]interface{}{"content-length-range", 0, maxObjectBytes},
		},
	}
	data, _ := json.Marshal(policy)
	return base64.StdEncoding.EncodeToString(data)
}

// signPolicy 以 HMAC-SHA1 对 policy 签名
func signPolicy(policy, accessKeySecret string) string {
	h := hmac.New(sha1.New, []byte(accessKeySecret))
	h.Write([]byte(policy))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
