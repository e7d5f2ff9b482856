package shared

import "fmt"

// DomainError represents a domain-level error with a stable machine code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ConflictError is a DomainError that carries the id of the record the
// operation collided with, so the operator can inspect or force-override.
type ConflictError struct {
	DomainError
	ExistingID string `json:"existing_id"`
}

// NewConflictError creates a conflict error referencing an existing record
func NewConflictError(code, message, existingID string) *ConflictError {
	return &ConflictError{
		DomainError: DomainError{Code: code, Message: fmt.Sprintf("%s (existing id: %s)", message, existingID)},
		ExistingID:  existingID,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
