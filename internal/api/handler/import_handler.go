package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"routine-hub/backend/internal/dto"
	"routine-hub/backend/internal/service"
	apperrors "routine-hub/backend/pkg/errors"
	"routine-hub/backend/pkg/response"
)

// ImportHandler 批量导入 Handler
type ImportHandler struct {
	svc     service.ImportService
	enabled bool
}

// NewImportHandler 创建 ImportHandler 实例；enabled=false 时所有导入接口返回 403
func NewImportHandler(svc service.ImportService, enabled bool) *ImportHandler {
	return &ImportHandler{svc: svc, enabled: enabled}
}

// ImportText 粘贴文本，经 AI 抽取后整批写入
// POST /api/v1/admin/import
func (h *ImportHandler) ImportText(c *gin.Context) {
	if !h.enabled {
		response.Error(c, http.StatusForbidden, 22000, "导入功能未开启")
		return
	}

	var req dto.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, 22005, err)
		return
	}

	resp, err := h.svc.ImportText(c.Request.Context(), &req)
	if err != nil {
		handleImportError(c, err)
		return
	}
	importResponse(c, resp)
}

// ImportICS 上传 .ics 文件导入
// POST /api/v1/admin/import/ics
//
// multipart/form-data: file=<.ics>，dry_run=true|false
func (h *ImportHandler) ImportICS(c *gin.Context) {
	if !h.enabled {
		response.Error(c, http.StatusForbidden, 22000, "导入功能未开启")
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 22005, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	dryRun, _ := strconv.ParseBool(c.PostForm("dry_run"))
	resp, err := h.svc.ImportICS(c.Request.Context(), file, dryRun)
	if err != nil {
		handleImportError(c, err)
		return
	}
	importResponse(c, resp)
}

func importResponse(c *gin.Context, resp *dto.ImportResponse) {
	if resp.DryRun {
		response.OK(c, resp)
		return
	}
	response.Created(c, resp)
}

func handleImportError(c *gin.Context, err error) {
	var mErr *service.MalformedImportError
	switch {
	case errors.Is(err, service.ErrImportDisabled):
		response.ServiceUnavailable(c, 22001, "未配置 AI 接口，文本导入不可用")
	case errors.Is(err, service.ErrImportTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, 22002, "导入文本过长")
	case errors.Is(err, service.ErrExtractFailed):
		response.Error(c, http.StatusBadGateway, 22003, "AI 服务调用失败，请稍后重试")
	case errors.As(err, &mErr):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 22004,
			apperrors.ErrMalformedImport.Message, malformedDetails(mErr))
	default:
		response.InternalError(c)
	}
}

func malformedDetails(e *service.MalformedImportError) string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return e.Reason + ": " + joinFieldErrors(e.Fields)
}
