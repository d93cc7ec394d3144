package errcode

import (
	"errors"
	"strings"
)

// 错误码约定：
// - 0：无错误
// - 4xxx：用户可见、可恢复的错误（表单、凭据、资源缺失）
// - 5xxx：系统错误（事务失败等）
const (
	OK                   = 0
	ValidationFailed     = 4000
	AuthenticationFailed = 4001
	Forbidden            = 4003
	NotFound             = 4004
	DuplicateEmail       = 4009
	PersistenceFailed    = 5000
)

// Error 携带错误码与面向用户的提示信息，底层原因保存在 Err 中。
type Error struct {
	Code     int
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := strings.Join(e.Messages, " ")
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation 汇总所有表单校验失败的信息。
func Validation(messages ...string) *Error {
	return &Error{Code: ValidationFailed, Messages: messages}
}

func Authentication(msg string) *Error {
	return &Error{Code: AuthenticationFailed, Messages: []string{msg}}
}

// SignInRequired 表示调用者是匿名身份。资源不属于调用者时用 Missing，不用它。
func SignInRequired(msg string) *Error {
	return &Error{Code: Forbidden, Messages: []string{msg}}
}

func Missing(msg string) *Error {
	return &Error{Code: NotFound, Messages: []string{msg}}
}

func Duplicate(msg string) *Error {
	return &Error{Code: DuplicateEmail, Messages: []string{msg}}
}

// Persistence 包装事务内的数据库错误，回滚后再返回。
func Persistence(msg string, err error) *Error {
	return &Error{Code: PersistenceFailed, Messages: []string{msg}, Err: err}
}

// CodeOf 返回错误链上的错误码；非 *Error 视为系统错误。
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return PersistenceFailed
}

// MessagesOf 返回可展示给用户的信息，未知错误使用 fallback。
func MessagesOf(err error, fallback string) []string {
	var e *Error
	if errors.As(err, &e) && len(e.Messages) > 0 {
		return e.Messages
	}
	return []string{fallback}
}

// IsNotFound 同时覆盖 NotFound 与 Forbidden；匿名调用方同样看不到任何资源。
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case NotFound, Forbidden:
		return true
	default:
		return false
	}
}
