package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"routine-hub/backend/internal/service"
	"routine-hub/backend/pkg/response"
	"routine-hub/backend/pkg/validate"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Routine *RoutineHandler
	Admin   *AdminHandler
	Import  *ImportHandler
	Export  *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, importEnabled bool) *Handler {
	return &Handler{
		Routine: NewRoutineHandler(svc.Routine),
		Admin:   NewAdminHandler(svc.Admin),
		Import:  NewImportHandler(svc.Import, importEnabled),
		Export:  NewExportHandler(svc.Export),
	}
}

// bindError 请求体绑定失败：校验错误附带字段明细
func bindError(c *gin.Context, code int, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		response.ErrorWithDetails(c, http.StatusBadRequest, code, "请求参数校验失败", joinFieldErrors(validate.FieldErrors(ve)))
		return
	}
	response.BadRequest(c, code, "请求体格式错误")
}

// joinFieldErrors 按字段名排序输出 "field=tag; ..."
func joinFieldErrors(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, "; ")
}
