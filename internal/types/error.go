package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a CustomError independently of its HTTP status.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindForbidden       Kind = "forbidden"
	KindUnauthenticated Kind = "unauthenticated"
)

// CustomError is the error every service returns for an expected failure.
// Type names the failed precondition, Details carries offending values.
type CustomError struct {
	Code    int            `json:"code"`
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// With returns a copy of the error carrying an extra detail.
func (e *CustomError) With(key string, value any) *CustomError {
	out := *e
	out.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

func newError(code int, kind Kind, errorType, format string, args ...any) *CustomError {
	return &CustomError{
		Code:    code,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Type:    errorType,
	}
}

// ValidationError reports malformed or inconsistent input.
func ValidationError(errorType, format string, args ...any) *CustomError {
	return newError(http.StatusBadRequest, KindValidation, errorType, format, args...)
}

// Conflict reports an already existing relation. It is rendered as 400,
// the status clients of this API expect for a duplicate.
func Conflict(errorType, format string, args ...any) *CustomError {
	return newError(http.StatusBadRequest, KindConflict, errorType, format, args...)
}

// NotFound reports a missing entity or relation.
func NotFound(errorType, format string, args ...any) *CustomError {
	return newError(http.StatusNotFound, KindNotFound, errorType, format, args...)
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(errorType, format string, args ...any) *CustomError {
	return newError(http.StatusForbidden, KindForbidden, errorType, format, args...)
}

// Unauthenticated reports a missing or invalid credential.
func Unauthenticated(errorType, format string, args ...any) *CustomError {
	return newError(http.StatusUnauthorized, KindUnauthenticated, errorType, format, args...)
}

// IsKind reports whether err wraps a CustomError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ce *CustomError
	return errors.As(err, &ce) && ce.Kind == kind
}
