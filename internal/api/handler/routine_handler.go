package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/service"
	"routine-hub/backend/pkg/response"
)

// RoutineHandler 课表查询模块 Handler
type RoutineHandler struct {
	svc service.RoutineService
}

// NewRoutineHandler 创建 RoutineHandler 实例
func NewRoutineHandler(svc service.RoutineService) *RoutineHandler {
	return &RoutineHandler{svc: svc}
}

// GetState 当前同步状态快照
// GET /api/v1/routine/state
func (h *RoutineHandler) GetState(c *gin.Context) {
	response.OK(c, h.svc.State(c.Request.Context()))
}

// Sync 手动同步（与进行中的同步合并），返回同步后的快照
// POST /api/v1/routine/sync?initial=true
//
// 同步失败不视为请求失败：错误体现在快照的 error 字段中。
func (h *RoutineHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 20000, "initial 参数必须为布尔值")
		return
	}
	response.OK(c, h.svc.Sync(c.Request.Context(), req.Initial))
}

// DismissWelcome 关闭版本更新提示
// POST /api/v1/routine/welcome/dismiss
func (h *RoutineHandler) DismissWelcome(c *gin.Context) {
	h.svc.DismissWelcome(c.Request.Context())
	response.OK(c, nil)
}

// GetDaily 日视图（默认今天）
// GET /api/v1/routine/daily?day=Sunday
func (h *RoutineHandler) GetDaily(c *gin.Context) {
	var q dto.DayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, 20001, err)
		return
	}

	resp, err := h.svc.Daily(c.Request.Context(), q.Day)
	if err != nil {
		handleRoutineError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetWeekly 周视图
// GET /api/v1/routine/weekly
func (h *RoutineHandler) GetWeekly(c *gin.Context) {
	response.OK(c, h.svc.Weekly(c.Request.Context()))
}

// GetCourses 课程列表
// GET /api/v1/routine/courses
func (h *RoutineHandler) GetCourses(c *gin.Context) {
	response.OK(c, h.svc.Courses(c.Request.Context()))
}

// GetTeachers 教师列表（全周或某天）
// GET /api/v1/routine/teachers?day=Monday
func (h *RoutineHandler) GetTeachers(c *gin.Context) {
	var q dto.DayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, 20001, err)
		return
	}

	resp, err := h.svc.Teachers(c.Request.Context(), q.Day)
	if err != nil {
		handleRoutineError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleRoutineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDay):
		response.BadRequest(c, 20001, "day 参数无法识别，应为 Saturday … Friday")
	default:
		response.InternalError(c)
	}
}
