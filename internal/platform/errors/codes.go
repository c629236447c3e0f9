// Package errors provides structured error handling for somnia-jump services.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected failure.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidInput marks a malformed, user-correctable request.
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeBackendUnavailable marks an unreachable or misconfigured durable store.
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"

	// CodeParseFailure marks a stored record that cannot be decoded.
	CodeParseFailure Code = "PARSE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
