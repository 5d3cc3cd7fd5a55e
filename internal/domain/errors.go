package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeProviderError    = "PROVIDER_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidContentType       = NewDomainError(ErrCodeValidation, "invalid content type")
	ErrInvalidLearningJobType   = NewDomainError(ErrCodeValidation, "invalid learning job type")
	ErrInvalidLearningJobStatus = NewDomainError(ErrCodeValidation, "invalid learning job status")
	ErrMissingRequiredField     = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrProjectContextNotFound = NewDomainError(ErrCodeNotFound, "project context not found")
	ErrLearningJobNotFound    = NewDomainError(ErrCodeNotFound, "learning job not found")
	ErrContentNotFound        = NewDomainError(ErrCodeNotFound, "content not found")
)

// Authorization errors
var (
	ErrInvalidAPIToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)

// Provider errors
var (
	ErrEmbeddingProvider  = NewDomainError(ErrCodeProviderError, "embedding provider call failed")
	ErrCompletionProvider = NewDomainError(ErrCodeProviderError, "completion provider call failed")
)
