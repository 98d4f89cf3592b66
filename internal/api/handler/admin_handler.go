package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/service"
	"routine-hub/backend/pkg/response"
)

// AdminHandler 管理端写入 Handler
type AdminHandler struct {
	svc service.AdminService
}

// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// CreateClass 新增一节课
// POST /api/v1/admin/classes
func (h *AdminHandler) CreateClass(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, 21000, err)
		return
	}

	resp, err := h.svc.CreateClass(c.Request.Context(), &req)
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.Created(c, resp)
}

// PublishMetadata 发布新的元数据版本
// POST /api/v1/admin/metadata
func (h *AdminHandler) PublishMetadata(c *gin.Context) {
	var req dto.PublishMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, 21000, err)
		return
	}

	resp, err := h.svc.PublishMetadata(c.Request.Context(), &req)
	if err != nil {
		handleAdminError(c, err)
		return
	}
	response.Created(c, resp)
}

func handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		response.BadRequest(c, 21001, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrRemoteWrite):
		response.Error(c, http.StatusServiceUnavailable, 21002, "远程数据库暂不可用，请稍后重试")
	default:
		response.InternalError(c)
	}
}
