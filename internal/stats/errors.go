package stats

import "fmt"

// StatsRepositoryError represents aggregate store operation failures
type StatsRepositoryError struct {
	Operation string
	Cause     error
}

func (e StatsRepositoryError) Error() string {
	return fmt.Sprintf("stats repository error during %s: %v", e.Operation, e.Cause)
}

func (e StatsRepositoryError) Unwrap() error { return e.Cause }

// Temporary reports whether the operation can be retried; store I/O
// failures heal on the next scheduled tick.
func (e StatsRepositoryError) Temporary() bool { return true }

// WrapStatsRepositoryError wraps an error as a StatsRepositoryError
func WrapStatsRepositoryError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return StatsRepositoryError{Operation: operation, Cause: err}
}
