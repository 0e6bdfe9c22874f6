package dto

import (
	"net/http"

	"github.com/hera/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes come from shared.DomainError
// and map to statuses by kind.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// kindHTTPStatus maps domain error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusBadRequest,
	shared.KindConflict:   http.StatusConflict,
	shared.KindInvariant:  http.StatusUnprocessableEntity,
	shared.KindDependency: http.StatusConflict,
	shared.KindStore:      http.StatusInternalServerError,
}

// codeHTTPStatus overrides the kind mapping for codes that have a more
// specific status than their kind implies
var codeHTTPStatus = map[string]int{
	shared.ErrNotFound.Code: http.StatusNotFound,
}

// DomainErrorStatus resolves the HTTP status for a domain error
func DomainErrorStatus(err *shared.DomainError) int {
	if status, ok := codeHTTPStatus[err.Code]; ok {
		return status
	}
	if status, ok := kindHTTPStatus[err.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
