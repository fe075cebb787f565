package dto

import "net/http"

// Error codes returned in the JSON body. Format: ERR_<DESCRIPTION>
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"

	// ErrCodeValidation is used when request binding rejects a field
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeInvalidInput is used when a domain rule rejects the input
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"

	// ErrCodeActorNotFound is used when the acting user is unknown or lacks the role
	ErrCodeActorNotFound = "ERR_ACTOR_NOT_FOUND"
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"

	// ErrCodeVersionConflict is used when a compare-and-swap lost a race
	ErrCodeVersionConflict = "ERR_VERSION_CONFLICT"
	// ErrCodeAlreadyApplied is used when an adjustment batch was applied before
	ErrCodeAlreadyApplied = "ERR_ALREADY_APPLIED"
	// ErrCodePreconditionFailed is used when the workflow forbids the action
	ErrCodePreconditionFailed = "ERR_PRECONDITION_FAILED"

	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeActorNotFound: http.StatusForbidden,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,

	ErrCodeVersionConflict:    http.StatusConflict,
	ErrCodeAlreadyApplied:     http.StatusConflict,
	ErrCodePreconditionFailed: http.StatusUnprocessableEntity,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps shared.DomainError codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"ACTOR_NOT_FOUND":     ErrCodeActorNotFound,
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"VERSION_CONFLICT":    ErrCodeVersionConflict,
	"ALREADY_APPLIED":     ErrCodeAlreadyApplied,
	"PRECONDITION_FAILED": ErrCodePreconditionFailed,
}

// NormalizeErrorCode converts a domain error code to its API code.
// A code that is already in API form or unknown is returned as is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
