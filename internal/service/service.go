package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"routine-hub/backend/config"
	"routine-hub/backend/internal/repository"
	"routine-hub/backend/internal/schedule"
	"routine-hub/backend/internal/syncer"
)

// SyncController 同步控制器中服务层用到的部分（*syncer.Controller 实现）
type SyncController interface {
	State() syncer.Snapshot
	Sync(ctx context.Context, isInitial bool) syncer.Snapshot
	Trigger(isInitial bool)
	DismissWelcome()
}

// RoutineOptions 课表视图参数
type RoutineOptions struct {
	OffDay         schedule.Day
	Slots          []schedule.TimeSlot
	BreakThreshold int
	Location       *time.Location
	Now            func() time.Time
}

// NewRoutineOptions 从配置构建视图参数
func NewRoutineOptions(cfg *config.RoutineConfig) RoutineOptions {
	opts := RoutineOptions{
		OffDay:         schedule.Day(cfg.OffDay),
		BreakThreshold: cfg.BreakThresholdMinutes,
		Location:       time.UTC,
		Now:            time.Now,
	}
	if opts.BreakThreshold <= 0 {
		opts.BreakThreshold = schedule.DefaultBreakThreshold
	}
	if cfg.Timezone != "" {
		if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
			opts.Location = loc
		}
	}
	for _, s := range cfg.TimeSlots {
		opts.Slots = append(opts.Slots, schedule.TimeSlot{Label: s.Label, Start: s.Start})
	}
	if len(opts.Slots) == 0 {
		opts.Slots = schedule.DefaultTimeSlots
	}
	return opts
}

func (o RoutineOptions) now() time.Time {
	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	if o.Now == nil {
		return time.Now().In(loc)
	}
	return o.Now().In(loc)
}

// Service 所有 Service 的聚合入口
type Service struct {
	Routine RoutineService
	Admin   AdminService
	Import  ImportService
	Export  ExportService
}

// NewService 创建 Service 聚合；extractor 为 nil 时文本导入不可用
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	ctrl SyncController,
	extractor Extractor,
	logger *zap.Logger,
) *Service {
	opts := NewRoutineOptions(&cfg.Routine)
	defaults := syncer.DefaultsFromConfig(&cfg.Routine)
	return &Service{
		Routine: NewRoutineService(ctrl, opts, logger),
		Admin:   NewAdminService(repo, ctrl, defaults, logger),
		Import:  NewImportService(repo, ctrl, extractor, opts, cfg.Import.MaxTextBytes, logger),
		Export:  NewExportService(ctrl, opts, logger),
	}
}
