package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode 错误代码类型（便于机器识别和监控）
type ErrorCode string

const (
	// 存储相关错误
	ErrCodeDecode           ErrorCode = "DECODE"            // 存储中的复合字段无法解码
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE" // Redis 不可达或命令失败

	// 请求相关错误
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST" // 请求体格式错误
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"    // 未授权

	// 配置相关错误
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG" // 配置无效
	ErrCodeMissingConfig ErrorCode = "MISSING_CONFIG" // 配置缺失
)

// AppError 应用级错误结构（支持错误链和上下文信息）
type AppError struct {
	Code    ErrorCode      // 错误代码（机器可识别）
	Message string         // 错误消息（人类可读）
	Err     error          // 底层错误（支持错误链）
	Context map[string]any // 错误上下文（便于调试和监控）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现错误链（Go 1.13+）
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext 添加错误上下文
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ============== 存储错误工厂函数 ==============

// DecodeError 复合字段解码失败
func DecodeError(field string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDecode,
		Message: fmt.Sprintf("failed to decode stored field %s", field),
		Err:     err,
		Context: map[string]any{"field": field},
	}
}

// StoreUnavailableError Redis 操作失败
func StoreUnavailableError(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeStoreUnavailable,
		Message: fmt.Sprintf("store operation failed: %s", operation),
		Err:     err,
		Context: map[string]any{"operation": operation},
	}
}

// ============== 请求错误工厂函数 ==============

// InvalidRequestError 请求体无法解析
func InvalidRequestError(reason string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidRequest,
		Message: "invalid request: " + reason,
		Err:     err,
	}
}

// UnauthorizedError 未授权
func UnauthorizedError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: "unauthorized: " + reason,
		Context: map[string]any{"reason": reason},
	}
}

// ============== 配置错误工厂函数 ==============

// InvalidConfigError 配置无效
func InvalidConfigError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("invalid config field '%s': %s", field, reason),
		Context: map[string]any{"field": field, "reason": reason},
	}
}

// MissingConfigError 配置缺失
func MissingConfigError(field string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("missing required config field: %s", field),
		Context: map[string]any{"field": field},
	}
}

// ============== 工具函数 ==============

// IsAppError 判断错误链中是否包含 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetErrorCode 获取错误代码（如果是AppError）
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasErrorCode 判断错误是否为特定错误代码
func HasErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
