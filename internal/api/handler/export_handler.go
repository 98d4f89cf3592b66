package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"routine-hub/backend/internal/service"
	"routine-hub/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeeklyExcel 导出周课表
// GET /api/v1/export/weekly.xlsx
func (h *ExportHandler) ExportWeeklyExcel(c *gin.Context) {
	buf, filename, err := h.exportSvc.WeeklyExcel(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename, xlsxContentType, buf.Bytes())
}

// ExportCalendar 导出 iCalendar 订阅
// GET /api/v1/export/routine.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	data, filename, err := h.exportSvc.Calendar(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	attachment(c, filename, icsContentType, data)
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoClasses):
		response.NotFound(c, 23001, "当前没有可导出的课程")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
