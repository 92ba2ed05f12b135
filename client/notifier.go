// Package client 鉴权请求客户端
package client

import "go.uber.org/zap"

// Notifier 用户可见的消息通知
// 嵌入方实现为 toast；未注入时退化为日志输出
type Notifier interface {
	// Toast 向用户展示一条短提示
	Toast(msg string)
}

type logNotifier struct {
	log *zap.Logger
}

func (n *logNotifier) Toast(msg string) {
	n.log.Warn("toast", zap.String("message", msg))
}
