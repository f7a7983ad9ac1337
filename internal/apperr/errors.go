package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Wire codes rendered in error payloads.
const (
	CodeValidation     = "VALIDATION"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeTransientStore = "STORE_UNAVAILABLE"
	CodeRateLimited    = "RATE_LIMITED"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL"
)

// ValidationError 字段级校验失败，携带出错字段名。
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError 跨 owner 操作或试图覆盖 owner_id。
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func NewForbidden(msg string) *ForbiddenError { return &ForbiddenError{Msg: msg} }

// NotFoundError 不存在与不属于调用者不可区分，避免泄露资源存在性。
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFound(resource string) *NotFoundError { return &NotFoundError{Resource: resource} }

// TransientStoreError 存储层暂时不可用；不在内部重试，交由调用方决定。
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

func WrapStore(op string, err error) *TransientStoreError {
	return &TransientStoreError{Op: op, Err: err}
}

// RateLimitedError 每日配额用尽。
type RateLimitedError struct {
	Limit int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("daily request limit of %d exceeded", e.Limit)
}

func NewRateLimited(limit int64) *RateLimitedError { return &RateLimitedError{Limit: limit} }

// Status maps an error to its HTTP status code. Unknown errors map to 500.
func Status(err error) int {
	var (
		ve *ValidationError
		fe *ForbiddenError
		ne *NotFoundError
		te *TransientStoreError
		re *RateLimitedError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &fe):
		return http.StatusForbidden
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &te):
		return http.StatusServiceUnavailable
	case errors.As(err, &re):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Code maps an error to its wire code string.
func Code(err error) string {
	var (
		ve *ValidationError
		fe *ForbiddenError
		ne *NotFoundError
		te *TransientStoreError
		re *RateLimitedError
	)
	switch {
	case errors.As(err, &ve):
		return CodeValidation
	case errors.As(err, &fe):
		return CodeForbidden
	case errors.As(err, &ne):
		return CodeNotFound
	case errors.As(err, &te):
		return CodeTransientStore
	case errors.As(err, &re):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}

// Field returns the offending field name for validation errors, "" otherwise.
func Field(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
