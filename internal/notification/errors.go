package notification

import "fmt"

// DispatchError represents a push gateway delivery failure. Dispatch
// failures are logged and dropped; they never roll back committed state.
type DispatchError struct {
	Operation string
	Cause     error
}

func (e DispatchError) Error() string {
	return fmt.Sprintf("notification dispatch failed during %s: %v", e.Operation, e.Cause)
}

func (e DispatchError) Unwrap() error { return e.Cause }

// NewDispatchError creates a new DispatchError
func NewDispatchError(operation string, cause error) error {
	return DispatchError{Operation: operation, Cause: cause}
}
