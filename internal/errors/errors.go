package errors

import (
	stderrors "errors"
	"fmt"
)

// Codes carried by AppError. The CLI prints them and the API maps them to
// HTTP statuses.
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeReadError     = "READ_ERROR"
	CodeRenderError   = "RENDER_ERROR"
	CodeInternalError = "INTERNAL_ERROR"

	codeUnknown = "UNKNOWN"
)

// AppError is an error tagged with one of the codes above
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AppError) Unwrap() error { return e.Cause }

// New returns a coded error without a cause
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with a formatted message
func Newf(code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// Wrap adds context to err. The code of the nearest AppError in the chain is
// kept; uncoded causes become INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	if appErr, ok := asAppError(err); ok {
		code = appErr.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode re-tags err with code, keeping its message and cause
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// IsAppError reports whether any error in the chain carries a code
func IsAppError(err error) bool {
	_, ok := asAppError(err)
	return ok
}

// GetCode returns the code of the nearest AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return codeUnknown
}

func ConfigInvalid(message string) *AppError { return New(CodeConfigInvalid, message) }

func InvalidInput(message string) *AppError { return New(CodeInvalidInput, message) }

// NotFound reports a missing sheet, column or device code
func NotFound(resource string) *AppError { return Newf(CodeNotFound, "%s not found", resource) }

// ReadError reports a failure of the sheet reader
func ReadError(cause error, message string) *AppError {
	return &AppError{Code: CodeReadError, Message: message, Cause: cause}
}

// RenderError reports a failure to draw or write a chart
func RenderError(cause error, message string) *AppError {
	return &AppError{Code: CodeRenderError, Message: message, Cause: cause}
}
