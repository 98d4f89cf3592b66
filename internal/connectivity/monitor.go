// Package connectivity 远程可达性探测。
//
// Monitor 周期性执行 Probe，记录在线/离线状态，并在"离线 → 在线"切换时通知监听者。
package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Probe 一次可达性检查，返回 nil 表示在线
type Probe func(ctx context.Context) error

// HTTPProbe 对 url 发起 HEAD 请求，2xx/3xx 视为在线
func HTTPProbe(url string) Probe {
	client := &http.Client{}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return fmt.Errorf("构造探测请求失败: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return fmt.Errorf("探测返回状态码 %d", resp.StatusCode)
		}
		return nil
	}
}

// PingProbe 使用数据库连接池的 Ping 作为探测
func PingProbe(ping func(ctx context.Context) error) Probe {
	return Probe(ping)
}

// Monitor 在线状态跟踪
type Monitor struct {
	probe    Probe
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	online  atomic.Bool
	checked atomic.Bool

	mu        sync.Mutex
	listeners []func()
}

// NewMonitor 创建监视器；首次 Check 之前视为在线
func NewMonitor(probe Probe, interval, timeout time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m := &Monitor{
		probe:    probe,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
	m.online.Store(true)
	return m
}

// Online 最近一次检查的结果
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// OnOnline 注册"恢复在线"监听，首次检查不会触发
func (m *Monitor) OnOnline(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Check 立即执行一次探测并更新状态
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.probe(probeCtx)
	now := err == nil
	was := m.online.Swap(now)
	first := !m.checked.Swap(true)

	if first {
		if !now {
			m.logger.Warn("远程不可达，进入离线模式", zap.Error(err))
		}
		return now
	}

	switch {
	case was && !now:
		m.logger.Warn("网络已断开", zap.Error(err))
	case !was && now:
		m.logger.Info("网络已恢复")
		m.notify()
	}
	return now
}

func (m *Monitor) notify() {
	m.mu.Lock()
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Run 按固定间隔探测，直到 ctx 取消
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
