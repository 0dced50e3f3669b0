package apperr

import (
	"errors"
	"net/http"
)

// Kind 错误类型
type Kind string

const (
	KindInvalidInput  Kind = "invalid_input" // 输入为空或全是空白
	KindConfiguration Kind = "configuration" // 配置缺失或无法解析
	KindRequest       Kind = "request"       // 网络失败或非 200 响应
	KindDecode        Kind = "decode"        // 响应体不是合法 JSON
	KindParse         Kind = "parse"         // 无法从响应中解析出表格
	KindExport        Kind = "export"        // 写入表格文件失败
	KindNotFound      Kind = "not_found"     // 导出记录不存在
)

// 按类型匹配的哨兵错误，配合 errors.Is 使用
var (
	ErrInvalidInput  = &Error{Kind: KindInvalidInput}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrRequest       = &Error{Kind: KindRequest}
	ErrDecode        = &Error{Kind: KindDecode}
	ErrParse         = &Error{Kind: KindParse}
	ErrExport        = &Error{Kind: KindExport}
	ErrNotFound      = &Error{Kind: KindNotFound}
)

// Error 带类型的业务错误
type Error struct {
	Kind    Kind
	Message string
	Detail  string // 诊断信息，例如非 200 响应的原始响应体
	Err     error
}

// New 创建错误
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap 包装底层错误
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetail 附加诊断信息
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按 Kind 匹配哨兵错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// KindOf 返回错误链中第一个 *Error 的类型，不存在时返回空
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// DetailOf 返回错误链中第一个 *Error 的诊断信息
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

// HTTPStatus 将错误类型映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindParse:
		return http.StatusUnprocessableEntity
	case KindRequest, KindDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
