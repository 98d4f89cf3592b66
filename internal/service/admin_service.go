package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/model"
	"routine-hub/backend/internal/repository"
	"routine-hub/backend/internal/schedule"
	"routine-hub/backend/internal/syncer"
)

// ── 管理模块业务错误 ──

var (
	ErrRemoteWrite   = errors.New("写入远程数据库失败")
	ErrInvalidPeriod = errors.New("结束时间必须晚于开始时间")
)

// 新增课程的表单默认值
const (
	defaultClassStart = "08:30"
	defaultClassEnd   = "10:00"
	defaultClassDay   = schedule.Sunday
	defaultClassType  = schedule.Lecture
)

// AdminService 管理端写入业务接口
//
// 写入只落远程数据库，随后触发一次后台同步刷新本地数据，不直接修改内存状态。
type AdminService interface {
	CreateClass(ctx context.Context, req *dto.CreateClassRequest) (*dto.CreateClassResponse, error)
	PublishMetadata(ctx context.Context, req *dto.PublishMetadataRequest) (*dto.PublishMetadataResponse, error)
}

type adminService struct {
	repo     *repository.Repository
	ctrl     SyncController
	defaults syncer.Defaults
	logger   *zap.Logger
	now      func() time.Time
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(repo *repository.Repository, ctrl SyncController, defaults syncer.Defaults, logger *zap.Logger) AdminService {
	return &adminService{
		repo:     repo,
		ctrl:     ctrl,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── CreateClass ──────────────────────

func (s *adminService) CreateClass(ctx context.Context, req *dto.CreateClassRequest) (*dto.CreateClassResponse, error) {
	row := s.buildRoutineRow(req)

	start, _ := schedule.ParseClock(row.StartTime)
	end, _ := schedule.ParseClock(row.EndTime)
	if end <= start {
		return nil, ErrInvalidPeriod
	}

	rows := []model.Routine{row}
	if err := s.repo.Routine.BatchCreate(ctx, rows); err != nil {
		s.logger.Error("新增课程失败", zap.String("code", row.Code), zap.Error(err))
		return nil, ErrRemoteWrite
	}

	s.logger.Info("新增课程成功", zap.Int64("id", rows[0].ID), zap.String("code", row.Code), zap.String("day", row.Day))
	s.ctrl.Trigger(false)

	return &dto.CreateClassResponse{
		ID:      rows[0].ID,
		Session: syncer.NormalizeSession(rows[0], s.defaults),
	}, nil
}

// buildRoutineRow 应用表单默认值；非 Lab 课程不保留 sub_section
func (s *adminService) buildRoutineRow(req *dto.CreateClassRequest) model.Routine {
	row := model.Routine{
		Subject:        strings.TrimSpace(req.Subject),
		Code:           strings.ToUpper(strings.TrimSpace(req.Code)),
		Teacher:        strings.TrimSpace(req.Teacher),
		TeacherInitial: strings.ToUpper(strings.TrimSpace(req.TeacherInitial)),
		StartTime:      orString(req.StartTime, defaultClassStart),
		EndTime:        orString(req.EndTime, defaultClassEnd),
		Room:           strings.TrimSpace(req.Room),
		Day:            orString(req.Day, string(defaultClassDay)),
		Section:        orString(req.Section, s.defaults.Section),
		Credits:        req.Credits,
	}

	typ := orString(req.Type, string(defaultClassType))
	row.Type = &typ
	if typ == string(schedule.Lab) && req.SubSection != "" {
		sub := strings.ToUpper(strings.TrimSpace(req.SubSection))
		row.SubSection = &sub
	}
	if req.TeacherPhoto != "" {
		photo := req.TeacherPhoto
		row.TeacherPhoto = &photo
	}
	return row
}

// ────────────────────── PublishMetadata ──────────────────────

func (s *adminService) PublishMetadata(ctx context.Context, req *dto.PublishMetadataRequest) (*dto.PublishMetadataResponse, error) {
	now := s.now()
	meta := &model.Metadata{
		Batch:          &req.Batch,
		Section:        &req.Section,
		Version:        &req.Version,
		TotalCourses:   &req.TotalCourses,
		ClassesPerWeek: &req.ClassesPerWeek,
		LastUpdated:    &now,
	}
	if req.WelcomeMsg != "" {
		meta.WelcomeMsg = &req.WelcomeMsg
	}

	if err := s.repo.Metadata.Create(ctx, meta); err != nil {
		s.logger.Error("发布元数据失败", zap.String("version", req.Version), zap.Error(err))
		return nil, ErrRemoteWrite
	}

	s.logger.Info("已发布新版本元数据", zap.Int64("id", meta.ID), zap.String("version", req.Version))
	s.ctrl.Trigger(false)

	return &dto.PublishMetadataResponse{
		ID:       meta.ID,
		Metadata: syncer.NormalizeMetadata(meta, s.defaults),
	}, nil
}

func orString(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
