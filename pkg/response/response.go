// Package response 统一的 JSON 响应信封 {code, message, data, details}。
//
// 业务码分段：
//
//	0        成功
//	10xxx    通用请求错误（限流、请求体过大）
//	20xxx    课表查询与同步（/routine）
//	21xxx    管理端写入（/admin/classes、/admin/metadata）
//	22xxx    课表导入（/admin/import）
//	23xxx    导出（/export）
//	50000    未预期的服务端错误
//
// 同步失败不走错误信封，而是体现在状态快照的 error 字段中。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 通用业务码；各模块的具体码在对应 handler 中定义
const (
	CodeOK              = 0
	CodeTooManyRequests = 10004
	CodeBodyTooLarge    = 10005
	CodeInternal        = 50000
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// OK 200，data 为快照或视图
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

// Created 201，远程写入已完成（随后触发后台同步）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "success", Data: data})
}

// Error 错误响应并中止后续中间件
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带详情的错误响应；details 为 "field=tag; ..." 或导入失败原因
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	c.AbortWithStatusJSON(httpStatus, Response{Code: code, Message: message, Details: details})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// ServiceUnavailable 503，远程库不可达或功能未配置
func ServiceUnavailable(c *gin.Context, code int, message string) {
	Error(c, http.StatusServiceUnavailable, code, message)
}

// TooManyRequests 429，导入接口限流
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, CodeTooManyRequests, "请求过于频繁，请稍后再试")
}

// PayloadTooLarge 413，管理端请求体超过 server.body_limit
func PayloadTooLarge(c *gin.Context) {
	Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "请求体过大")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeInternal, "服务器内部错误")
}
