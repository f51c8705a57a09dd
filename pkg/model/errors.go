package model

import "fmt"

// ErrorCode represents a structured API error code.
type ErrorCode string

const (
	ErrValidation        ErrorCode = "VALIDATION_ERROR"
	ErrUnsupportedPolicy ErrorCode = "UNSUPPORTED_POLICY"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrSimulation        ErrorCode = "SIMULATION_ERROR"
	ErrInternal          ErrorCode = "INTERNAL_ERROR"
)

// APIError is a structured error returned by the cpusched API.
type APIError struct {
	Code    ErrorCode    `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a validation error on a specific field.
// Field uses a JSON-path-like notation, e.g. "processes[2].burst_time".
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates an APIError with validation details.
func NewValidationError(msg string, details ...FieldError) *APIError {
	return &APIError{Code: ErrValidation, Message: msg, Details: details}
}

// NewNotFoundError creates a NOT_FOUND APIError.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s '%s' not found", resource, id),
	}
}

// UnsupportedPolicyError is returned when a policy name is unknown, or when a
// policy is not allowed in the position it was used (e.g. SRTF inside an MLQ queue).
type UnsupportedPolicyError struct {
	Policy string
	Queue  *int // queue priority for MLQ queues, nil for top-level policies
}

func (e *UnsupportedPolicyError) Error() string {
	if e.Queue != nil {
		return fmt.Sprintf("unsupported policy %q for queue %d", e.Policy, *e.Queue)
	}
	return fmt.Sprintf("unsupported policy %q", e.Policy)
}
