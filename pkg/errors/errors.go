package errors

// Kind 同步错误类型（面向用户展示）
type Kind string

const (
	KindOffline         Kind = "offline"
	KindConnectionError Kind = "connection_error"
	KindMalformedImport Kind = "malformed_import"
)

// AppError 用户可见错误：Title/Message 直接用于展示层
type AppError struct {
	Kind    Kind
	Title   string
	Message string
}

func (e *AppError) Error() string {
	return e.Title + ": " + e.Message
}

// 首次加载的两类致命错误，均提供"重新连接"操作
var (
	ErrOffline = &AppError{
		Kind:    KindOffline,
		Title:   "Offline",
		Message: "No cached data found and you are currently offline.",
	}
	ErrConnection = &AppError{
		Kind:    KindConnectionError,
		Title:   "Connection Error",
		Message: "Failed to load routine data from server.",
	}
)

// ErrMalformedImport 导入结果为空或被远程拒绝，仅在导入接口内返回
var ErrMalformedImport = &AppError{
	Kind:    KindMalformedImport,
	Title:   "Import Failed",
	Message: "Failed to process routine. Check input format.",
}
