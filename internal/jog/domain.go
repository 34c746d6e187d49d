package jog

import (
	"time"

	"jogapp-api/internal/common"
)

// AllowedReminderOffsets is the exact set of minute offsets a reminder may be
// configured with. Validated at creation; the scheduler does not re-validate.
var AllowedReminderOffsets = map[int]bool{
	5:  true,
	10: true,
	15: true,
	30: true,
	60: true,
}

// Jog represents one task instance, optionally a container of steps
type Jog struct {
	ID     common.JogID  `json:"id" bson:"_id"`
	UserID common.UserID `json:"user_id" bson:"userId" validate:"required"`

	Title    string `json:"title" bson:"title" validate:"required"`
	Category string `json:"category" bson:"category"`

	DueDate     time.Time  `json:"due_date" bson:"dueDate" validate:"required"`
	CreatedAt   time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updatedAt"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completedAt,omitempty"`

	Completed      bool                  `json:"completed" bson:"completed"`
	CompleteStatus common.CompleteStatus `json:"complete_status" bson:"completeStatus"`

	Deleted     bool       `json:"deleted" bson:"deleted"`
	TimeDeleted *time.Time `json:"time_deleted,omitempty" bson:"timeDeleted,omitempty"`

	ReminderEnabled   bool            `json:"reminder_enabled" bson:"reminderEnabled"`
	ReminderIntervals []IntervalGroup `json:"reminder_intervals" bson:"reminderIntervals"`

	IsStepBased bool   `json:"is_step_based" bson:"isStepBased"`
	Steps       []Step `json:"steps,omitempty" bson:"steps,omitempty"`

	IsAI           bool                  `json:"is_ai" bson:"isAI"`
	ConversationID common.ConversationID `json:"conversation_id,omitempty" bson:"conversationId,omitempty"`
}

// Step is a sub-unit of a step-based jog, independently completable and
// independently due
type Step struct {
	ID             common.StepID         `json:"id" bson:"id"`
	Title          string                `json:"title" bson:"title" validate:"required"`
	DueDate        time.Time             `json:"due_date" bson:"dueDate" validate:"required"`
	Completed      bool                  `json:"completed" bson:"completed"`
	CompleteStatus common.CompleteStatus `json:"complete_status" bson:"completeStatus"`
}

// IntervalGroup is a configured set of minute offsets before a due date at
// which a notification should fire, with a trigger budget and exhaustion flag
type IntervalGroup struct {
	Intervals        []int `json:"intervals" bson:"intervals"`
	CurrentInterval  int   `json:"current_interval" bson:"currentInterval"`
	CountOfIntervals int   `json:"count_of_intervals" bson:"countOfIntervals"`
	HasTriggered     bool  `json:"has_triggered" bson:"hasTriggered"`
}

// JogFilter represents compound-predicate filtering for jog queries
type JogFilter struct {
	UserID          *common.UserID          `json:"user_id,omitempty"`
	Status          *common.CompleteStatus  `json:"status,omitempty"`
	Statuses        []common.CompleteStatus `json:"statuses,omitempty"`
	DueAfter        *time.Time              `json:"due_after,omitempty"`
	DueBefore       *time.Time              `json:"due_before,omitempty"`
	Deleted         *bool                   `json:"deleted,omitempty"`
	ReminderEnabled *bool                   `json:"reminder_enabled,omitempty"`
	Limit           int                     `json:"limit,omitempty"`
}

// JogUpdate is one (id, partial fields) pair in a batch update. Field names
// are document paths; the repository applies all pairs as a single batch.
type JogUpdate struct {
	ID     common.JogID
	Fields map[string]interface{}
}

// IsDueOn reports whether the jog's due date falls on the calendar day
// containing t in the given location
func (j *Jog) IsDueOn(t time.Time, loc *time.Location) bool {
	return common.SameDay(j.DueDate, t, loc)
}

// Valid reports whether the document carries the fields every sweep relies
// on. Malformed documents are skipped with a warning, never a job failure.
func (j *Jog) Valid() bool {
	if j.ID == "" || j.UserID == "" || j.DueDate.IsZero() {
		return false
	}
	for _, g := range j.ReminderIntervals {
		if g.CountOfIntervals < 0 || g.CurrentInterval < 0 {
			return false
		}
	}
	return true
}

// IncompleteSteps returns the steps not yet completed
func (j *Jog) IncompleteSteps() []Step {
	var steps []Step
	for _, s := range j.Steps {
		if !s.Completed {
			steps = append(steps, s)
		}
	}
	return steps
}
