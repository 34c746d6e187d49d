package planner

import "fmt"

// Error codes for planner operations
const (
	ErrorCodeInvalidAPIKey      = "INVALID_API_KEY"
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeRateLimited        = "RATE_LIMITED"
	ErrorCodeMalformedPlan      = "MALFORMED_PLAN"
	ErrorCodeUnknown            = "UNKNOWN"
)

// PlannerError defines the interface for planner-specific errors
type PlannerError interface {
	error
	Code() string
	Retryable() bool
}

// APIError represents an error returned by the planning backend
type APIError struct {
	StatusCode int
	ErrorCode  string
	Msg        string
	Details    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("planner API error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Msg)
}

func (e *APIError) Code() string { return e.ErrorCode }

func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, errorCode, msg, details string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Msg: msg, Details: details}
}

// NetworkError represents a transport-level failure
type NetworkError struct {
	Operation string
	Msg       string
	Cause     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("planner network error during %s: %s", e.Operation, e.Msg)
}

func (e *NetworkError) Code() string    { return ErrorCodeServiceUnavailable }
func (e *NetworkError) Retryable() bool { return true }
func (e *NetworkError) Unwrap() error   { return e.Cause }

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, msg string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Msg: msg, Cause: cause}
}

// MalformedPlanError represents model output that could not be parsed into
// any usable plan
type MalformedPlanError struct {
	Msg     string
	Details string
}

func (e *MalformedPlanError) Error() string {
	return fmt.Sprintf("malformed plan: %s", e.Msg)
}

func (e *MalformedPlanError) Code() string    { return ErrorCodeMalformedPlan }
func (e *MalformedPlanError) Retryable() bool { return false }

// NewMalformedPlanError creates a new MalformedPlanError
func NewMalformedPlanError(msg, details string) *MalformedPlanError {
	return &MalformedPlanError{Msg: msg, Details: details}
}

// ConfigurationError represents a missing or invalid provider setting
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("planner configuration error (%s): %s", e.Field, e.Msg)
}

func (e *ConfigurationError) Code() string    { return ErrorCodeUnknown }
func (e *ConfigurationError) Retryable() bool { return false }

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(field, msg string) *ConfigurationError {
	return &ConfigurationError{Field: field, Msg: msg}
}

// IsRetryable reports whether an error is worth retrying
func IsRetryable(err error) bool {
	if pe, ok := err.(PlannerError); ok {
		return pe.Retryable()
	}
	return false
}
