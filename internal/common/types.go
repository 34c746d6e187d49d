package common

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// NewID generates a new unique identifier
func NewID() ID {
	return ID(uuid.New().String())
}

// IsValid checks if the ID is a valid UUID
func (id ID) IsValid() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// MarshalJSON implements json.Marshaler
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*id = ID(s)
	return nil
}

// Typed aliases for different ID types
type (
	UserID         ID
	JogID          ID
	StepID         ID
	ConversationID ID
)

// CompleteStatus represents the lifecycle status of a jog or step.
// Exactly one status holds at any time.
type CompleteStatus string

const (
	StatusLoading         CompleteStatus = "loading"
	StatusUpcoming        CompleteStatus = "upcoming"
	StatusOverdue         CompleteStatus = "overdue"
	StatusCompletedOnTime CompleteStatus = "completedOnTime"
	StatusCompletedLate   CompleteStatus = "completedLate"
	StatusIncomplete      CompleteStatus = "incomplete"
)

// String returns the string representation of CompleteStatus
func (s CompleteStatus) String() string {
	return string(s)
}

// IsValid checks if the CompleteStatus is valid
func (s CompleteStatus) IsValid() bool {
	switch s {
	case StatusLoading, StatusUpcoming, StatusOverdue,
		StatusCompletedOnTime, StatusCompletedLate, StatusIncomplete:
		return true
	default:
		return false
	}
}

// IsCompleted reports whether the status is one of the completed terminal states
func (s CompleteStatus) IsCompleted() bool {
	return s == StatusCompletedOnTime || s == StatusCompletedLate
}

// IsCounted reports whether the status contributes to a completion-rate
// bucket. Upcoming and overdue jogs are still in flight and are not counted.
func (s CompleteStatus) IsCounted() bool {
	return s.IsCompleted() || s == StatusIncomplete
}

// Common error types
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

type InternalError struct {
	Message string
	Cause   error
}

func (e InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Message)
}

func (e InternalError) Unwrap() error {
	return e.Cause
}
