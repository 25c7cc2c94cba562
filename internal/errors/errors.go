// Package errors defines the tagged service error type shared by all
// components. Internal code returns these variants; only the HTTP boundary
// translates them to status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error variant.
type ErrorCode string

const (
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeExpired           ErrorCode = "AUTH_EXPIRED"
	CodeInvalidSignature  ErrorCode = "INVALID_SIGNATURE"
	CodeInvalidCredential ErrorCode = "INVALID_CREDENTIAL"
	CodeRateLimited       ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeNotImplemented    ErrorCode = "NOT_IMPLEMENTED"
	CodeUpstream          ErrorCode = "UPSTREAM_ERROR"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// statusByCode maps each variant to its HTTP status. Kept in one place so
// the boundary mapping is auditable.
var statusByCode = map[ErrorCode]int{
	CodeInvalidArgument:   http.StatusBadRequest,
	CodeBadRequest:        http.StatusBadRequest,
	CodeNotFound:          http.StatusNotFound,
	CodeExpired:           http.StatusUnauthorized,
	CodeInvalidSignature:  http.StatusUnauthorized,
	CodeInvalidCredential: http.StatusUnauthorized,
	CodeRateLimited:       http.StatusTooManyRequests,
	CodeNotImplemented:    http.StatusNotImplemented,
	CodeUpstream:          http.StatusBadGateway,
	CodeInternal:          http.StatusInternalServerError,
}

// ServiceError carries an error variant with its message and cause.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, cause error) *ServiceError {
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        cause,
	}
}

// InvalidArgument reports a malformed identity, signature, or input shape.
func InvalidArgument(message string) *ServiceError {
	return newError(CodeInvalidArgument, message, nil)
}

// BadRequest reports a semantic validation failure.
func BadRequest(message string) *ServiceError {
	return newError(CodeBadRequest, message, nil)
}

// NotFound reports a missing record or account.
func NotFound(message string) *ServiceError {
	return newError(CodeNotFound, message, nil)
}

// Expired reports an authentication request outside the allowed time window.
func Expired(message string) *ServiceError {
	return newError(CodeExpired, message, nil)
}

// InvalidSignature reports a signature that does not verify.
func InvalidSignature(message string) *ServiceError {
	return newError(CodeInvalidSignature, message, nil)
}

// InvalidCredential reports a bad, expired, or malformed session credential.
func InvalidCredential(cause error) *ServiceError {
	return newError(CodeInvalidCredential, "invalid credential", cause)
}

// RateLimitExceeded reports that the shared request quota is exhausted.
func RateLimitExceeded() *ServiceError {
	return newError(CodeRateLimited, "rate limit exceeded", nil)
}

// NotImplemented reports a route that exists but has no business logic.
func NotImplemented(message string) *ServiceError {
	return newError(CodeNotImplemented, message, nil)
}

// Upstream reports a ledger RPC failure.
func Upstream(message string, cause error) *ServiceError {
	return newError(CodeUpstream, "solana: "+message, cause)
}

// Internal reports a serialization or derivation failure not attributable
// to caller input.
func Internal(message string, cause error) *ServiceError {
	return newError(CodeInternal, message, cause)
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}
