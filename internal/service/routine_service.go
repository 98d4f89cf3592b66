package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/schedule"
	"routine-hub/backend/internal/syncer"
)

// ── 课表查询模块业务错误 ──

var (
	ErrInvalidDay = errors.New("无法识别的星期")
)

// RoutineService 课表查询与同步业务接口
//
// 所有视图都基于控制器快照即时计算，不做额外缓存。
type RoutineService interface {
	State(ctx context.Context) *dto.StateResponse
	Sync(ctx context.Context, initial bool) *dto.StateResponse
	DismissWelcome(ctx context.Context)
	Daily(ctx context.Context, day string) (*dto.DailyResponse, error)
	Weekly(ctx context.Context) *dto.WeeklyResponse
	Courses(ctx context.Context) *dto.CoursesResponse
	Teachers(ctx context.Context, day string) (*dto.TeachersResponse, error)
}

type routineService struct {
	ctrl   SyncController
	opts   RoutineOptions
	logger *zap.Logger
}

// NewRoutineService 创建 RoutineService 实例
func NewRoutineService(ctrl SyncController, opts RoutineOptions, logger *zap.Logger) RoutineService {
	return &routineService{ctrl: ctrl, opts: opts, logger: logger}
}

// ────────────────────── 状态与同步 ──────────────────────

func (s *routineService) State(_ context.Context) *dto.StateResponse {
	return toStateResponse(s.ctrl.State())
}

func (s *routineService) Sync(ctx context.Context, initial bool) *dto.StateResponse {
	return toStateResponse(s.ctrl.Sync(ctx, initial))
}

func (s *routineService) DismissWelcome(_ context.Context) {
	s.ctrl.DismissWelcome()
}

// ────────────────────── 日视图 ──────────────────────

func (s *routineService) Daily(_ context.Context, day string) (*dto.DailyResponse, error) {
	today := schedule.Today(s.opts.now())
	target, err := s.resolveDay(day, today)
	if err != nil {
		return nil, err
	}

	snap := s.ctrl.State()
	timeline := schedule.Timeline(snap.Classes, target, s.opts.BreakThreshold)

	items := make([]dto.AgendaItemResponse, 0, len(timeline))
	agenda := make([]schedule.ClassSession, 0, len(timeline))
	for _, e := range timeline {
		items = append(items, toAgendaItem(e))
		agenda = append(agenda, e.Session)
	}

	return &dto.DailyResponse{
		Day:      target,
		IsToday:  target == today,
		IsOffDay: target == s.opts.OffDay,
		Count:    len(items),
		Classes:  items,
		Teachers: schedule.DailyTeachers(agenda),
	}, nil
}

// ────────────────────── 周视图 ──────────────────────

func (s *routineService) Weekly(_ context.Context) *dto.WeeklyResponse {
	snap := s.ctrl.State()
	grid := schedule.BuildWeeklyGrid(snap.Classes, s.opts.Slots, s.opts.OffDay)
	summary := schedule.Summarize(snap.Classes, s.opts.OffDay)
	offGrid := schedule.OffGrid(snap.Classes, s.opts.Slots, s.opts.OffDay)
	if len(offGrid) > 0 {
		s.logger.Debug("部分课程未落入周视图时间段", zap.Int("count", len(offGrid)))
	}

	rows := make([]dto.WeeklyRowResponse, 0, len(grid.Rows))
	for _, r := range grid.Rows {
		rows = append(rows, dto.WeeklyRowResponse{Day: r.Day, Cells: r.Cells})
	}

	return &dto.WeeklyResponse{
		OffDay:   s.opts.OffDay,
		Slots:    grid.Slots,
		Rows:     rows,
		Counts:   summary.Counts,
		Total:    summary.Total,
		Busiest:  summary.Busiest,
		Lightest: summary.Lightest,
		OffGrid:  len(offGrid),
	}
}

// ────────────────────── 课程与教师 ──────────────────────

func (s *routineService) Courses(_ context.Context) *dto.CoursesResponse {
	snap := s.ctrl.State()
	courses := schedule.UniqueCourses(snap.Classes)
	return &dto.CoursesResponse{
		Metadata: snap.Metadata,
		Total:    len(courses),
		Courses:  courses,
	}
}

func (s *routineService) Teachers(_ context.Context, day string) (*dto.TeachersResponse, error) {
	snap := s.ctrl.State()
	if day == "" {
		return &dto.TeachersResponse{Teachers: schedule.Teachers(snap.Classes)}, nil
	}

	target, ok := schedule.ParseDay(day)
	if !ok {
		return nil, ErrInvalidDay
	}
	agenda := schedule.DailyAgenda(snap.Classes, target)
	return &dto.TeachersResponse{Day: target, Teachers: schedule.DailyTeachers(agenda)}, nil
}

// ── 辅助函数 ──

func (s *routineService) resolveDay(day string, today schedule.Day) (schedule.Day, error) {
	if day == "" || day == "today" {
		return today, nil
	}
	d, ok := schedule.ParseDay(day)
	if !ok {
		return "", ErrInvalidDay
	}
	return d, nil
}

func toAgendaItem(e schedule.AgendaEntry) dto.AgendaItemResponse {
	item := dto.AgendaItemResponse{
		ClassSession:    e.Session,
		GapAfterMinutes: e.GapAfter,
		IsBreak:         e.IsBreak,
	}
	if c, ok := e.Session.Start(); ok {
		item.DisplayStart, item.StartPeriod = c.Format12h()
	}
	if c, ok := e.Session.End(); ok {
		item.DisplayEnd, item.EndPeriod = c.Format12h()
	}
	return item
}

func toStateResponse(snap syncer.Snapshot) *dto.StateResponse {
	resp := &dto.StateResponse{
		Status:      string(snap.Status),
		IsLoading:   snap.IsLoading,
		IsSyncing:   snap.IsSyncing,
		ShowWelcome: snap.ShowWelcome,
		Metadata:    snap.Metadata,
		Classes:     snap.Classes,
	}
	if snap.Err != nil {
		resp.Error = &dto.SyncErrorResponse{
			Kind:    string(snap.Err.Kind),
			Title:   snap.Err.Title,
			Message: snap.Err.Message,
		}
	}
	if snap.ShowWelcome && snap.Metadata != nil {
		resp.WelcomeMsg = snap.Metadata.WelcomeMsg
	}
	if !snap.LastSyncAt.IsZero() {
		resp.LastSyncAt = snap.LastSyncAt.Format(time.RFC3339)
	}
	return resp
}
