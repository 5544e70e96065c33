package apperrors

import (
	"errors"
	"net/http"
)

// Gone 的原因
const (
	ReasonDeactivated = "deactivated"
	ReasonExpired     = "expired"
)

// AppError 自定义错误类型
// Code 为 HTTP 状态码，Message 为 i18n 消息 ID（找不到翻译时原样返回）
type AppError struct {
	Code    int
	Message string
	Reason  string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Reason != "" {
		return e.Message + " (" + e.Reason + ")"
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// WithCause 附加底层错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// BusinessError 封装业务逻辑错误（通用）
func BusinessError(code int, message string) *AppError {
	return WithCode(code, message)
}

// NotFound 资源不存在
func NotFound(message string) *AppError {
	return WithCode(http.StatusNotFound, message)
}

// Gone 短链已停用或已过期，reason 区分两者
func Gone(reason string) *AppError {
	message := "error.link_deactivated"
	if reason == ReasonExpired {
		message = "error.link_expired"
	}
	return &AppError{
		Code:    http.StatusGone,
		Message: message,
		Reason:  reason,
	}
}

// Unauthorized 密码错误或缺少身份
func Unauthorized(message string) *AppError {
	return WithCode(http.StatusUnauthorized, message)
}

// Conflict 短码冲突
func Conflict(message string) *AppError {
	return WithCode(http.StatusConflict, message)
}

// StorageUnavailable 存储层暂时不可用，调用方可以整体重试
func StorageUnavailable(cause error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: "error.storage_unavailable",
		Cause:   cause,
	}
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, message)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_request")
}

// SystemError 封装系统内部错误
func SystemError(message string) *AppError {
	return WithCode(http.StatusInternalServerError, message)
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, "error.system")
}

// IsCode 判断 err 链上是否存在指定状态码的 AppError
func IsCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ReasonOf 返回 Gone 错误的原因，非 Gone 返回空串
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
