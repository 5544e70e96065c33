package response

import (
	"shortlink-go/internal/apperrors"
	"time"
)

// Response 是一个通用的 API 响应结构
type Response[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reason    string `json:"reason,omitempty"`
	Data      T      `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PageResponse 分页响应结构体
type PageResponse[T any] struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalPage int `json:"totalPage"`
	Total     int `json:"total"`
	List      []T `json:"list"`
}

// NewPage 构造分页结果，total 为 0 时返回空列表而不是 null
func NewPage[T any](page, size int, total int64, list []T) *PageResponse[T] {
	if list == nil {
		list = []T{}
	}
	totalPage := 0
	if size > 0 {
		totalPage = (int(total) + size - 1) / size
	}
	return &PageResponse[T]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      list,
	}
}

// OK 构造一个成功的响应
func OK[T any](data T, message string) *Response[T] {
	return &Response[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Error 构造一个失败的响应
func Error(message string) *Response[any] {
	return &Response[any]{
		Success:   false,
		Message:   message,
		Data:      nil,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ErrorFromAppError 基于 AppError 构造错误响应，message 为已翻译的文本
func ErrorFromAppError(err *apperrors.AppError, message string) *Response[any] {
	if message == "" {
		message = err.Message
	}
	return &Response[any]{
		Success:   false,
		Message:   message,
		Reason:    err.Reason,
		Data:      nil,
		Timestamp: time.Now().UnixMilli(),
	}
}
