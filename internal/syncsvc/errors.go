package syncsvc

import (
	"errors"
	"fmt"
)

// Code машинно-читаемый код ошибки синхронизации.
// Клиент различает retryable и терминальные коды: первые можно
// повторить, вторые требуют вмешательства или сброса локального
// состояния.
type Code string

const (
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeInvalidJSON        Code = "INVALID_JSON"
	CodeIntegrityViolation Code = "INTEGRITY_VIOLATION"
	CodeVersionMismatch    Code = "VERSION_MISMATCH"
	CodeSaveInProgress     Code = "SAVE_IN_PROGRESS"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"
	CodeStoreUnavailable   Code = "STORE_UNAVAILABLE"
	CodeCacheUnavailable   Code = "CACHE_UNAVAILABLE"
	CodeUnknown            Code = "UNKNOWN_ERROR"
)

// Retryable сообщает, имеет ли смысл повторять запрос с этим кодом.
func (c Code) Retryable() bool {
	switch c {
	case CodeSaveInProgress, CodeRateLimitExceeded, CodeStoreUnavailable, CodeCacheUnavailable:
		return true
	}
	return false
}

// Error типизированная ошибка оркестратора: код таксономии плюс
// причина. Причина сохраняется для errors.Is/As.
type Error struct {
	Err  error
	Code Code
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создает ошибку таксономии с текстовым сообщением.
func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Err: errors.New(msg)}
}

// WrapError оборачивает причину в ошибку таксономии.
func WrapError(code Code, err error) *Error {
	return &Error{Code: code, Err: err}
}

// errorf создает ошибку таксономии с форматированным сообщением.
func errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// CodeOf извлекает код таксономии из ошибки.
// Для посторонних ошибок возвращает CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
