package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Membership errors
var (
	ErrAlreadyMember    = errors.New("user is already a member")
	ErrOwnerCannotLeave = errors.New("owner cannot leave the group")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewValidationError wraps ErrValidationFailed
func NewValidationError(message string) *CustomError {
	return NewCustomError(ErrValidationFailed, message)
}

// NewFieldValidationError wraps ErrValidationFailed and records the offending field
func NewFieldValidationError(field, message string) *CustomError {
	return NewValidationError(message).WithDetails(map[string]interface{}{field: message})
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return NewCustomError(ErrResourceNotFound, message)
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewAlreadyMemberError is returned by a strict join on an existing membership
func NewAlreadyMemberError() error {
	return NewCustomError(ErrAlreadyMember, "User is already a member.")
}

// NewOwnerCannotLeaveError is returned when the group owner tries to leave
func NewOwnerCannotLeaveError() error {
	return NewCustomError(ErrOwnerCannotLeave, "Owner cannot leave the group. Transfer ownership first.")
}

// MessageOf returns the user-facing message of err, if it carries one
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}

// DetailsOf returns the details attached to err, if any
func DetailsOf(err error) map[string]interface{} {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Details
	}
	return nil
}
