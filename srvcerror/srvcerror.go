package srvcerror

import (
	"errors"
	"net/http"
)

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus int // optional, for HTTP responses
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

// Unwrap exposes the debug cause so errors.Is can see through service errors.
func (e *Error) Unwrap() error {
	return e.dbgInfoErr
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

// HasCode reports whether err (or anything it wraps) is a service error with the given code.
func HasCode(err error, code string) bool {
	srvcErr := &Error{}
	if !errors.As(err, &srvcErr) {
		return false
	}
	return srvcErr.errorCode == code
}

// Code returns the service error code of err, or an empty string.
func Code(err error) string {
	srvcErr := &Error{}
	if errors.As(err, &srvcErr) {
		return srvcErr.errorCode
	}
	return ""
}

const (
	ErrCodeInternalServerError = "internal_server_error"
	ErrCodeUnauthenticated     = "unauthenticated"
	ErrCodeForbidden           = "forbidden"
	ErrCodeNotFound            = "not_found"
	ErrCodeInvalidRequest      = "invalid_request"
)

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

func ErrUnauthenticated() *Error {
	return New(
		ErrCodeUnauthenticated,
		"missing or invalid credentials",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

func ErrForbidden(msg string) *Error {
	return New(ErrCodeForbidden, msg).SetHttpStatusCode(http.StatusForbidden)
}

func ErrNotFound(msg string) *Error {
	return New(ErrCodeNotFound, msg).SetHttpStatusCode(http.StatusNotFound)
}

func ErrInvalidRequest(msg string) *Error {
	return New(ErrCodeInvalidRequest, msg).SetHttpStatusCode(http.StatusBadRequest)
}
