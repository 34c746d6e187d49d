package jog

import (
	"errors"
	"fmt"

	"jogapp-api/internal/common"
)

// Repository errors
var (
	ErrJogNotFound  = errors.New("jog not found")
	ErrStepNotFound = errors.New("step not found")
)

// Error codes for the jog module
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeBusinessRule     = "BUSINESS_RULE_VIOLATION"
	ErrCodeRepository       = "REPOSITORY_ERROR"
)

// JogError interface for jog-specific errors
type JogError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// JogValidationError represents validation failures for jogs
type JogValidationError struct {
	Field      string
	Value      interface{}
	ErrMessage string
}

func (e JogValidationError) Error() string {
	return fmt.Sprintf("jog validation failed for field '%s': %s (value: %v)", e.Field, e.ErrMessage, e.Value)
}

func (e JogValidationError) Code() string    { return ErrCodeValidationFailed }
func (e JogValidationError) Message() string { return e.ErrMessage }
func (e JogValidationError) Temporary() bool { return false }

// BusinessRuleError represents violations of business logic rules
type BusinessRuleError struct {
	Rule    string
	Details string
}

func (e BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation: %s - %s", e.Rule, e.Details)
}

func (e BusinessRuleError) Code() string    { return ErrCodeBusinessRule }
func (e BusinessRuleError) Message() string { return e.Details }
func (e BusinessRuleError) Temporary() bool { return false }

// RepositoryError represents store operation failures
type RepositoryError struct {
	Operation string
	Details   string
	Cause     error
}

func (e RepositoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repository error during %s: %s (caused by: %v)", e.Operation, e.Details, e.Cause)
	}
	return fmt.Sprintf("repository error during %s: %s", e.Operation, e.Details)
}

func (e RepositoryError) Code() string    { return ErrCodeRepository }
func (e RepositoryError) Message() string { return e.Details }
func (e RepositoryError) Temporary() bool { return true }
func (e RepositoryError) Unwrap() error   { return e.Cause }

// NewJogValidationError creates a new JogValidationError
func NewJogValidationError(field string, value interface{}, message string) error {
	return JogValidationError{Field: field, Value: value, ErrMessage: message}
}

// NewBusinessRuleError creates a new BusinessRuleError
func NewBusinessRuleError(rule, details string) error {
	return BusinessRuleError{Rule: rule, Details: details}
}

// WrapRepositoryError wraps an error as a RepositoryError
func WrapRepositoryError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return RepositoryError{
		Operation: operation,
		Details:   "store operation failed",
		Cause:     err,
	}
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	var jogErr JogError
	if errors.As(err, &jogErr) {
		return jogErr.Code() == ErrCodeValidationFailed
	}
	var commonErr common.ValidationError
	return errors.As(err, &commonErr)
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	if errors.Is(err, ErrJogNotFound) || errors.Is(err, ErrStepNotFound) {
		return true
	}
	var nf common.NotFoundError
	return errors.As(err, &nf)
}

// IsBusinessRuleError checks if the error is a business rule violation
func IsBusinessRuleError(err error) bool {
	var jogErr JogError
	if errors.As(err, &jogErr) {
		return jogErr.Code() == ErrCodeBusinessRule
	}
	return false
}

// IsTemporaryError checks if the error is temporary and can be retried
func IsTemporaryError(err error) bool {
	var jogErr JogError
	if errors.As(err, &jogErr) {
		return jogErr.Temporary()
	}
	return false
}
