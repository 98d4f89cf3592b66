// Package syncer 缓存优先的远程同步控制器。
//
// 启动时先读本地缓存（首屏无需等待网络），再在后台拉取远程数据。
// 同一时刻最多一次同步在执行；执行期间到达的触发合并为一次尾随同步。
package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"routine-hub/backend/internal/cache"
	"routine-hub/backend/internal/schedule"
	apperrors "routine-hub/backend/pkg/errors"
)

// Status 控制器状态
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading" // 首次加载
	StatusSyncing Status = "syncing" // 后台刷新
	StatusError   Status = "error"   // 首次加载失败且无缓存
)

// Snapshot 对外暴露的只读快照（深拷贝）
type Snapshot struct {
	Classes     []schedule.ClassSession
	Metadata    *schedule.RoutineMetadata
	IsLoading   bool
	IsSyncing   bool
	Err         *apperrors.AppError
	ShowWelcome bool
	Status      Status
	LastSyncAt  time.Time
}

// Options 控制器参数
type Options struct {
	Timeout  time.Duration // 单次同步的远程调用超时
	Defaults Defaults
	Notifier Notifier
	Metrics  *Metrics
}

// Controller 同步控制器
type Controller struct {
	source   Source
	store    *cache.Store
	conn     Connectivity
	gate     *VersionGate
	notifier Notifier
	metrics  *Metrics
	timeout  time.Duration
	defaults Defaults
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// 状态
	mu          sync.RWMutex
	classes     []schedule.ClassSession
	metadata    *schedule.RoutineMetadata
	haveRoutine bool
	isLoading   bool
	isSyncing   bool
	err         *apperrors.AppError
	showWelcome bool
	lastSyncAt  time.Time

	// 调度
	runMu          sync.Mutex
	running        bool
	pending        bool
	pendingInitial bool
	done           chan struct{}
	closed         bool
}

// New 创建控制器；调用 Open 之前处于 loading 状态
func New(source Source, store *cache.Store, conn Connectivity, opts Options, logger *zap.Logger) *Controller {
	if conn == nil {
		conn = AlwaysOnline{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		source:    source,
		store:     store,
		conn:      conn,
		gate:      NewVersionGate(store),
		notifier:  notifier,
		metrics:   opts.Metrics,
		timeout:   opts.Timeout,
		defaults:  opts.Defaults,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		classes:   make([]schedule.ClassSession, 0),
		isLoading: true,
	}
}

// Open 读取本地缓存，必须在首次同步之前调用
func (c *Controller) Open(ctx context.Context) {
	var classes []schedule.ClassSession
	hasRoutine := c.store.LoadJSON(ctx, cache.KeyRoutine, &classes)

	var meta schedule.RoutineMetadata
	hasMeta := c.store.LoadJSON(ctx, cache.KeyMetadata, &meta)

	c.mu.Lock()
	defer c.mu.Unlock()
	if hasRoutine {
		if classes == nil {
			classes = make([]schedule.ClassSession, 0)
		}
		c.classes = classes
		c.haveRoutine = true
		c.isLoading = false
	}
	if hasMeta {
		c.metadata = &meta
	}
	c.metrics.setClasses(len(c.classes))

	c.logger.Info("已加载本地缓存",
		zap.Bool("routine", hasRoutine),
		zap.Bool("metadata", hasMeta),
		zap.Int("classes", len(c.classes)),
	)
}

// Start 在后台发起首次同步
func (c *Controller) Start() {
	c.Trigger(true)
}

// Trigger 异步发起同步，不等待结果
func (c *Controller) Trigger(isInitial bool) {
	c.runMu.Lock()
	if c.closed {
		c.runMu.Unlock()
		return
	}
	c.wg.Add(1)
	c.runMu.Unlock()

	go func() {
		defer c.wg.Done()
		c.Sync(context.Background(), isInitial)
	}()
}

// Sync 执行（或合并进正在执行的）同步，并等待该轮结束后返回快照
//
// ctx 只控制调用方的等待；远程调用受控制器生命周期与超时约束。
func (c *Controller) Sync(ctx context.Context, isInitial bool) Snapshot {
	c.runMu.Lock()
	if c.closed {
		c.runMu.Unlock()
		return c.State()
	}
	if c.running {
		c.pending = true
		c.pendingInitial = c.pendingInitial || isInitial
		done := c.done
		c.runMu.Unlock()
		c.metrics.incCoalesced()

		select {
		case <-done:
		case <-ctx.Done():
		}
		return c.State()
	}
	c.running = true
	c.done = make(chan struct{})
	done := c.done
	c.wg.Add(1)
	c.runMu.Unlock()

	defer c.wg.Done()
	initial := isInitial
	for {
		c.syncOnce(initial)

		c.runMu.Lock()
		if !c.pending || c.ctx.Err() != nil {
			c.running = false
			c.pending = false
			c.pendingInitial = false
			c.runMu.Unlock()
			break
		}
		initial = c.pendingInitial
		c.pending = false
		c.pendingInitial = false
		c.runMu.Unlock()
	}
	close(done)
	return c.State()
}

func (c *Controller) syncOnce(isInitial bool) {
	start := time.Now()

	if !c.conn.Online() {
		c.mu.Lock()
		if isInitial && !c.haveRoutine {
			c.err = apperrors.ErrOffline
			c.isLoading = false
		}
		c.mu.Unlock()
		c.logger.Info("离线状态，跳过同步", zap.Bool("initial", isInitial))
		c.metrics.observeSync(resultOffline, time.Since(start))
		return
	}

	c.mu.Lock()
	if isInitial {
		c.isLoading = true
	} else {
		c.isSyncing = true
	}
	c.err = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.isLoading = false
		c.isSyncing = false
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()

	if err := c.pull(ctx); err != nil {
		c.mu.Lock()
		degraded := c.haveRoutine
		if !degraded {
			c.err = apperrors.ErrConnection
		}
		c.mu.Unlock()

		if degraded {
			c.logger.Warn("同步失败，继续使用本地缓存", zap.Error(err))
			c.metrics.observeSync(resultDegraded, time.Since(start))
		} else {
			c.logger.Error("同步失败且无本地缓存", zap.Error(err))
			c.metrics.observeSync(resultFailed, time.Since(start))
		}
		return
	}

	c.metrics.observeSync(resultSuccess, time.Since(start))
}

// pull 拉取元数据与课程，成功时替换内存状态并写缓存
func (c *Controller) pull(ctx context.Context) error {
	row, err := c.source.LatestMetadata(ctx)
	if err != nil {
		return err
	}
	if row != nil {
		meta := NormalizeMetadata(row, c.defaults)
		c.mu.Lock()
		c.metadata = &meta
		c.mu.Unlock()
		c.store.SaveJSON(ctx, cache.KeyMetadata, meta)

		if changed, previous := c.gate.Observe(ctx, meta.Version); changed {
			c.mu.Lock()
			c.showWelcome = true
			c.mu.Unlock()
			c.metrics.incVersionChange()
			c.logger.Info("课表版本已更新", zap.String("from", previous), zap.String("to", meta.Version))
			if err := c.notifier.VersionChanged(ctx, VersionChange{From: previous, To: meta.Version, Metadata: meta}); err != nil {
				c.logger.Warn("版本变更通知发送失败", zap.Error(err))
			}
		}
	} else {
		c.logger.Info("远程无元数据记录，保留现有元数据")
	}

	rows, err := c.source.ListRoutine(ctx)
	if err != nil {
		return err
	}
	sessions := NormalizeSessions(rows, c.defaults)

	c.mu.Lock()
	c.classes = sessions
	c.haveRoutine = true
	c.err = nil
	c.lastSyncAt = time.Now()
	c.mu.Unlock()

	c.store.SaveJSON(ctx, cache.KeyRoutine, sessions)
	c.metrics.setClasses(len(sessions))
	c.logger.Info("同步完成", zap.Int("classes", len(sessions)))
	return nil
}

// State 当前状态的深拷贝
func (c *Controller) State() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Classes:     schedule.CloneSessions(c.classes),
		IsLoading:   c.isLoading,
		IsSyncing:   c.isSyncing,
		Err:         c.err,
		ShowWelcome: c.showWelcome,
		LastSyncAt:  c.lastSyncAt,
	}
	if c.metadata != nil {
		m := *c.metadata
		snap.Metadata = &m
	}
	switch {
	case c.isLoading:
		snap.Status = StatusLoading
	case c.isSyncing:
		snap.Status = StatusSyncing
	case c.err != nil:
		snap.Status = StatusError
	default:
		snap.Status = StatusIdle
	}
	return snap
}

// DismissWelcome 关闭"版本更新"提示
func (c *Controller) DismissWelcome() {
	c.mu.Lock()
	c.showWelcome = false
	c.mu.Unlock()
}

// Close 取消进行中的远程调用并等待同步循环退出
func (c *Controller) Close() {
	c.runMu.Lock()
	c.closed = true
	c.runMu.Unlock()

	c.cancel()
	c.wg.Wait()
}
