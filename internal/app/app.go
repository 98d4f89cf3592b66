// Package app 服务端与命令行共用的依赖装配。
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"routine-hub/backend/config"
	"routine-hub/backend/internal/cache"
	"routine-hub/backend/internal/connectivity"
	"routine-hub/backend/internal/extractor"
	"routine-hub/backend/internal/model"
	"routine-hub/backend/internal/notify"
	"routine-hub/backend/internal/repository"
	"routine-hub/backend/internal/service"
	"routine-hub/backend/internal/syncer"
	"routine-hub/backend/pkg/database"
	applogger "routine-hub/backend/pkg/logger"
	"routine-hub/backend/pkg/redis"
)

// ErrOfflineMode 离线模式下不支持写远程数据
var ErrOfflineMode = errors.New("离线模式仅可读取本地缓存")

// Options 装配选项
type Options struct {
	// Offline 不连接远程数据库与 Redis，只渲染本地缓存
	Offline bool
	// Metrics 为 true 时创建 Prometheus 注册表
	Metrics bool
}

// App 装配完成的运行时依赖
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	Redis      *redis.Client
	Store      *cache.Store
	Monitor    *connectivity.Monitor
	Controller *syncer.Controller
	Service    *service.Service
	Registry   *prometheus.Registry
	Offline    bool

	nats      *notify.NATSPublisher
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New 按配置装配：数据库 → 迁移 → Redis → 缓存 → 连通性 → 通知 → 同步控制器 → Service
func New(cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Offline: opts.Offline}

	if opts.Metrics {
		a.Registry = prometheus.NewRegistry()
		a.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 1. 远程数据库（不可达时以缓存模式继续）
	reachable := false
	if !opts.Offline {
		db, ok, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			return nil, err
		}
		a.DB, reachable = db, ok
		if reachable && cfg.Database.AutoMigrate {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
			}
			if err := database.RunMigrations(sqlDB, logger); err != nil {
				return nil, fmt.Errorf("数据库迁移失败: %w", err)
			}
		}
	}

	// 2. Redis（可选：缓存后端与导入限流）
	if !opts.Offline || cfg.Cache.Driver == "redis" {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，导入限流将不可用", zap.Error(err))
		} else {
			a.Redis = rdb
		}
	}

	// 3. 本地缓存
	store, err := cache.Open(&cfg.Cache, a.Redis, applogger.WithComponent(logger, "cache"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("打开本地缓存失败: %w", err)
	}
	a.Store = store

	// 4. 连通性
	var conn syncer.Connectivity = syncer.AlwaysOffline{}
	if !opts.Offline {
		a.Monitor = connectivity.NewMonitor(a.probe(), cfg.Sync.ProbeInterval, cfg.Sync.ProbeTimeout, applogger.WithComponent(logger, "connectivity"))
		conn = a.Monitor
	}

	// 5. 版本变更通知
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	if cfg.Notify.NATSURL != "" && !opts.Offline {
		pub, err := notify.ConnectNATS(cfg.Notify.NATSURL, cfg.Notify.Subject, logger)
		if err != nil {
			logger.Warn("NATS 连接失败，仅记录日志通知", zap.Error(err))
		} else {
			a.nats = pub
			notifiers = append(notifiers, pub)
		}
	}

	// 6. 同步控制器
	var repo *repository.Repository
	var source syncer.Source = offlineSource{}
	if a.DB != nil {
		repo = repository.NewRepository(a.DB)
		source = syncer.NewRepositorySource(repo)
	}
	var metrics *syncer.Metrics
	if a.Registry != nil {
		metrics = syncer.NewMetrics(a.Registry)
	}
	a.Controller = syncer.New(source, store, conn, syncer.Options{
		Timeout:  cfg.Sync.Timeout,
		Defaults: syncer.DefaultsFromConfig(&cfg.Routine),
		Notifier: notifiers,
		Metrics:  metrics,
	}, applogger.WithComponent(logger, "syncer"))

	// 7. AI 抽取器（未配置或未开启时文本导入不可用）
	var ex service.Extractor
	if cfg.Feature.ImportEnabled && !opts.Offline {
		e, err := extractor.New(&cfg.AI, applogger.WithComponent(logger, "extractor"))
		switch {
		case err == nil:
			ex = e
		case errors.Is(err, extractor.ErrNotConfigured):
			logger.Info("未配置 AI 接口，文本导入不可用")
		default:
			logger.Warn("初始化 AI 抽取器失败", zap.Error(err))
		}
	}

	a.Service = service.NewService(cfg, repo, a.Controller, ex, logger)
	return a, nil
}

// probe 配置了 probe_url 时 HEAD 探测，否则 Ping 远程数据库
func (a *App) probe() connectivity.Probe {
	if a.Config.Sync.ProbeURL != "" {
		return connectivity.HTTPProbe(a.Config.Sync.ProbeURL)
	}
	return connectivity.PingProbe(func(ctx context.Context) error {
		if a.DB == nil {
			return errors.New("数据库未初始化")
		}
		sqlDB, err := a.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

// Start 读取缓存并发起首次同步；background=true 时同时启动连通性轮询，恢复在线后自动补同步
func (a *App) Start(ctx context.Context, background bool) {
	a.Controller.Open(ctx)

	if a.Monitor != nil {
		a.Monitor.Check(ctx)
		a.Monitor.OnOnline(func() {
			a.Logger.Info("网络已恢复，触发后台同步")
			a.Controller.Trigger(false)
		})
	}

	if background {
		a.Controller.Start()
		if a.Monitor != nil {
			runCtx, cancel := context.WithCancel(context.Background())
			a.cancel = cancel
			a.wg.Add(1)
			go func() {
				defer a.wg.Done()
				a.Monitor.Run(runCtx)
			}()
		}
	}
}

// Close 按依赖逆序释放资源，可重复调用
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		a.wg.Wait()
		if a.Controller != nil {
			a.Controller.Close()
		}
		if a.nats != nil {
			a.nats.Close()
		}
		if a.Store != nil {
			a.Store.Close()
		}
		if a.Redis != nil {
			a.Redis.Close()
		}
		database.Close(a.DB)
		a.Logger.Info("资源已释放")
	})
}

// offlineSource 未连接远程数据库时的数据源；控制器离线时不会调用
type offlineSource struct{}

func (offlineSource) LatestMetadata(context.Context) (*model.Metadata, error) {
	return nil, ErrOfflineMode
}

func (offlineSource) ListRoutine(context.Context) ([]model.Routine, error) {
	return nil, ErrOfflineMode
}
