package events

import (
	"time"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id" validate:"required"`
	Timestamp     time.Time `json:"timestamp" validate:"required"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return Event{
		CorrelationID: uuid.New().String(),
		Timestamp:     time.Now(),
	}
}

// JogCreated represents an event when a new jog has been created
type JogCreated struct {
	Event
	JogID       string    `json:"jog_id" validate:"required"`
	UserID      string    `json:"user_id" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	IsStepBased bool      `json:"is_step_based"`
	IsAI        bool      `json:"is_ai"`
	Category    string    `json:"category"`
}

// JogCompleted represents an event when a jog has been completed by its owner
type JogCompleted struct {
	Event
	JogID       string    `json:"jog_id" validate:"required"`
	UserID      string    `json:"user_id" validate:"required"`
	CompletedAt time.Time `json:"completed_at" validate:"required"`
	OnTime      bool      `json:"on_time"`
}

// JogDeleted represents an event when a jog has been soft-deleted
type JogDeleted struct {
	Event
	JogID  string `json:"jog_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

// JogChanged represents a raw document change observed on the jog store.
// It drives the reactive status recomputation path.
type JogChanged struct {
	Event
	JogID  string `json:"jog_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
}

// StatusChanged represents a lifecycle status transition applied to a jog
type StatusChanged struct {
	Event
	JogID     string `json:"jog_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	OldStatus string `json:"old_status" validate:"required"`
	NewStatus string `json:"new_status" validate:"required"`
}

// PlanGenerated represents an event when the planner produced jog-creation requests
type PlanGenerated struct {
	Event
	UserID       string `json:"user_id" validate:"required"`
	JogsCreated  int    `json:"jogs_created"`
	PlansSkipped int    `json:"plans_skipped"`
}

// NotificationsDispatched summarizes one dispatch batch
type NotificationsDispatched struct {
	Event
	Job       string `json:"job" validate:"required"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	BatchSize int    `json:"batch_size"`
}

// Event topics constants
const (
	TopicJogCreated              = "jog.created"
	TopicJogCompleted            = "jog.completed"
	TopicJogDeleted              = "jog.deleted"
	TopicJogChanged              = "jog.changed"
	TopicStatusChanged           = "jog.status_changed"
	TopicPlanGenerated           = "plan.generated"
	TopicNotificationsDispatched = "notifications.dispatched"
)
