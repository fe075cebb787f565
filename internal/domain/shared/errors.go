package shared

// Error kind codes shared by every bounded context
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeActorNotFound      = "ACTOR_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeAlreadyApplied     = "ALREADY_APPLIED"
	CodePreconditionFailed = "PRECONDITION_FAILED"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError of the same kind, so that
// errors.Is(err, ErrNotFound) matches any NOT_FOUND error regardless of message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidInput       = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrActorNotFound      = NewDomainError(CodeActorNotFound, "No actor found for the required role")
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists      = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrVersionConflict    = NewDomainError(CodeVersionConflict, "Resource was modified by another process")
	ErrAlreadyApplied     = NewDomainError(CodeAlreadyApplied, "Operation was already applied")
	ErrPreconditionFailed = NewDomainError(CodePreconditionFailed, "Operation not allowed in current state")
)
