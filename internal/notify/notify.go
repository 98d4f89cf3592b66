// Package notify 课表版本切换的外部通知实现。
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"routine-hub/backend/internal/syncer"
)

// LogNotifier 仅写日志
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) VersionChanged(_ context.Context, change syncer.VersionChange) error {
	n.logger.Info("课表新版本",
		zap.String("from", change.From),
		zap.String("to", change.To),
		zap.String("welcome_msg", change.Metadata.WelcomeMsg),
	)
	return nil
}

// publisher *nats.Conn 的发布能力
type publisher interface {
	Publish(subject string, data []byte) error
}

// Event 发布到 NATS 的消息体
type Event struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Batch      string    `json:"batch"`
	Section    string    `json:"section"`
	WelcomeMsg string    `json:"welcome_msg"`
	ObservedAt time.Time `json:"observed_at"`
}

// NATSPublisher 将版本切换发布到 NATS subject
type NATSPublisher struct {
	conn    publisher
	nc      *nats.Conn
	subject string
}

// ConnectNATS 连接 NATS 并返回发布器
func ConnectNATS(url, subject string, logger *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("routine-hub"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS 连接断开", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS 已重连", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	logger.Info("NATS 连接成功", zap.String("url", url), zap.String("subject", subject))
	return &NATSPublisher{conn: nc, nc: nc, subject: subject}, nil
}

func (p *NATSPublisher) VersionChanged(ctx context.Context, change syncer.VersionChange) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(Event{
		From:       change.From,
		To:         change.To,
		Batch:      change.Metadata.Batch,
		Section:    change.Metadata.Section,
		WelcomeMsg: change.Metadata.WelcomeMsg,
		ObservedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal version event: %w", err)
	}
	return p.conn.Publish(p.subject, data)
}

// Close 刷新缓冲并关闭连接
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// Multi 依次通知所有下游，收集全部错误
type Multi []syncer.Notifier

func (m Multi) VersionChanged(ctx context.Context, change syncer.VersionChange) error {
	var errs []error
	for _, n := range m {
		if err := n.VersionChanged(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
