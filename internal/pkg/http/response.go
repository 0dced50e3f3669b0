package http

import (
	"errors"

	"tablegen/internal/pkg/apperr"
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Message string `json:"message"`          // 错误消息
	Kind    string `json:"kind,omitempty"`   // 错误类型
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// SuccessResponse 成功响应（所有API共用）
type SuccessResponse struct {
	Code    int         `json:"code"`           // 状态码（0表示成功）
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据（可选）
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}

// FromError 将业务错误转换为 HTTP 状态码和错误响应
// 错误码为 HTTP 状态码 * 100 + 1，例如 40001、50201
// 诊断信息（例如上游原始响应体）原样放在 detail 中，不拼进 message
func FromError(err error) (int, *ErrorResponse) {
	status := apperr.HTTPStatus(err)

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
		if appErr.Err != nil {
			message += ": " + appErr.Err.Error()
		}
	}

	resp := NewErrorResponse(status*100+1, message, apperr.DetailOf(err))
	resp.Kind = string(apperr.KindOf(err))
	return status, resp
}
