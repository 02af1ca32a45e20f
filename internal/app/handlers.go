package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "maintkv/internal/errors"
)

// APIResponse 标准API响应结构
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// RespondJSON 发送成功的JSON响应
func RespondJSON[T any](c *gin.Context, code int, data T) {
	c.JSON(code, APIResponse[T]{
		Success: code >= 200 && code < 300,
		Data:    data,
	})
}

// RespondError 发送错误响应（AppError 附带错误码）
func RespondError(c *gin.Context, code int, err error) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}

	c.JSON(code, APIResponse[any]{
		Success: false,
		Error:   errMsg,
		Code:    string(apperrors.GetErrorCode(err)),
	})
}

// RespondErrorMsg 发送错误消息响应
func RespondErrorMsg(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse[any]{
		Success: false,
		Error:   message,
	})
}

// statusForError 按错误码映射HTTP状态
func statusForError(err error) int {
	switch apperrors.GetErrorCode(err) {
	case apperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
