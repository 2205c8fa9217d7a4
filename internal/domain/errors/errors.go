package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAlreadyExists        = errors.New("resource already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrBadRequest           = errors.New("bad request")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrConflict             = errors.New("conflict")
	ErrInvalidPayment       = errors.New("invalid payment")
	ErrUnavailable          = errors.New("service unavailable")
	ErrVerificationFailed   = errors.New("verification failed")
	ErrPaymentNotConfigured = errors.New("payment verification not configured")
)

// Machine-readable error codes returned to API clients.
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeInvalidPayment = "INVALID_PAYMENT"
	CodeUnavailable    = "UNAVAILABLE"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status and machine code
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, ErrBadRequest)
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrConflict)
}

// InvalidPayment covers receipt failures, receiver/chain/value/confirmation
// mismatches. Same HTTP status as BadRequest but a distinct code, so clients
// can tell a malformed request from an insufficient payment.
func InvalidPayment(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidPayment, message, ErrInvalidPayment)
}

func Unavailable(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeUnavailable, message, ErrUnavailable)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// VerificationError reports a SIWE signature/nonce/freshness failure. The
// reason is safe to surface to the caller.
func VerificationError(reason string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, reason, ErrVerificationFailed)
}
