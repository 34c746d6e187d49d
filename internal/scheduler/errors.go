package scheduler

import (
	"fmt"
)

// SchedulerError defines the interface for scheduler-specific errors
type SchedulerError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// schedulerError implements the SchedulerError interface
type schedulerError struct {
	code      string
	message   string
	temporary bool
}

func (e *schedulerError) Error() string {
	return fmt.Sprintf("scheduler error [%s]: %s", e.code, e.message)
}

func (e *schedulerError) Code() string {
	return e.code
}

func (e *schedulerError) Message() string {
	return e.message
}

func (e *schedulerError) Temporary() bool {
	return e.temporary
}

// Error constants
const (
	ErrSchedulerNotRunning     = "scheduler_not_running"
	ErrSchedulerAlreadyRunning = "scheduler_already_running"
	ErrInvalidConfiguration    = "invalid_configuration"
	ErrUnknownJob              = "unknown_job"
	ErrJobRunFailed            = "job_run_failed"
	ErrJobPanic                = "job_panic"
)

// JobRunError wraps a failure of one scheduled job tick
type JobRunError struct {
	schedulerError
	JobName string
}

// ShutdownError indicates the scheduler did not drain within the timeout
type ShutdownError struct {
	schedulerError
	TimeoutSeconds int
}

// ConfigurationError indicates an invalid scheduler setting
type ConfigurationError struct {
	schedulerError
	Field string
	Value interface{}
}

// Constructor functions
func NewSchedulerError(code, message string) error {
	return &schedulerError{
		code:      code,
		message:   message,
		temporary: false,
	}
}

func NewJobRunError(jobName string, err error) error {
	return &JobRunError{
		schedulerError: schedulerError{
			code:      ErrJobRunFailed,
			message:   fmt.Sprintf("job %s failed: %v", jobName, err),
			temporary: true,
		},
		JobName: jobName,
	}
}

func NewShutdownError(message string, timeoutSeconds int) error {
	return &ShutdownError{
		schedulerError: schedulerError{
			code:      "shutdown_timeout",
			message:   message,
			temporary: false,
		},
		TimeoutSeconds: timeoutSeconds,
	}
}

func NewConfigurationError(field string, value interface{}, message string) error {
	return &ConfigurationError{
		schedulerError: schedulerError{
			code:      ErrInvalidConfiguration,
			message:   fmt.Sprintf("invalid configuration for field %s (value: %v): %s", field, value, message),
			temporary: false,
		},
		Field: field,
		Value: value,
	}
}

// IsTemporaryError reports whether an error is worth retrying on the next tick
func IsTemporaryError(err error) bool {
	if schedErr, ok := err.(SchedulerError); ok {
		return schedErr.Temporary()
	}
	return false
}

func IsConfigurationError(err error) bool {
	if schedErr, ok := err.(SchedulerError); ok {
		return schedErr.Code() == ErrInvalidConfiguration
	}
	return false
}
