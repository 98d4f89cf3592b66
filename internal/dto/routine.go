package dto

import "routine-hub/backend/internal/schedule"

// ── 课表查询 DTO ──

// SyncRequest 手动同步参数
type SyncRequest struct {
	Initial bool `form:"initial"` // true 时走首次加载路径（错误页的"重新连接"）
}

// DayQuery 按天查询参数；为空表示今天
type DayQuery struct {
	Day string `form:"day" binding:"omitempty,dayname"`
}

// SyncErrorResponse 用户可见的同步错误
type SyncErrorResponse struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// StateResponse 控制器状态快照
type StateResponse struct {
	Status      string                    `json:"status"`
	IsLoading   bool                      `json:"is_loading"`
	IsSyncing   bool                      `json:"is_syncing"`
	Error       *SyncErrorResponse        `json:"error"`
	ShowWelcome bool                      `json:"show_welcome"`
	WelcomeMsg  string                    `json:"welcome_msg,omitempty"`
	LastSyncAt  string                    `json:"last_sync_at,omitempty"`
	Metadata    *schedule.RoutineMetadata `json:"metadata"`
	Classes     []schedule.ClassSession   `json:"classes"`
}

// AgendaItemResponse 日程中的一节课
type AgendaItemResponse struct {
	schedule.ClassSession
	DisplayStart    string `json:"display_start"` // 8:30
	StartPeriod     string `json:"start_period"`  // AM
	DisplayEnd      string `json:"display_end"`
	EndPeriod       string `json:"end_period"`
	GapAfterMinutes *int   `json:"gap_after_minutes"`
	IsBreak         bool   `json:"is_break"`
}

// DailyResponse 日视图
type DailyResponse struct {
	Day      schedule.Day              `json:"day"`
	IsToday  bool                      `json:"is_today"`
	IsOffDay bool                      `json:"is_off_day"`
	Count    int                       `json:"count"`
	Classes  []AgendaItemResponse      `json:"classes"`
	Teachers []schedule.TeacherSummary `json:"teachers"`
}

// WeeklyRowResponse 周网格中的一天
type WeeklyRowResponse struct {
	Day   schedule.Day              `json:"day"`
	Cells [][]schedule.ClassSession `json:"cells"`
}

// WeeklyResponse 周视图
type WeeklyResponse struct {
	OffDay   schedule.Day         `json:"off_day"`
	Slots    []schedule.TimeSlot  `json:"slots"`
	Rows     []WeeklyRowResponse  `json:"rows"`
	Counts   []schedule.DayCount  `json:"counts"`
	Total    int                  `json:"total"`
	Busiest  *schedule.DayCount   `json:"busiest"`
	Lightest *schedule.DayCount   `json:"lightest"`
	OffGrid  int                  `json:"off_grid"` // 未落入任何时间段的课程数
}

// CoursesResponse 课程列表
type CoursesResponse struct {
	Metadata *schedule.RoutineMetadata `json:"metadata"`
	Total    int                       `json:"total"`
	Courses  []schedule.Course         `json:"courses"`
}

// TeachersResponse 教师列表
type TeachersResponse struct {
	Day      schedule.Day              `json:"day,omitempty"`
	Teachers []schedule.TeacherSummary `json:"teachers"`
}
