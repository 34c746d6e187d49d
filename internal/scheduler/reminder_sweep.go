package scheduler

import (
	"context"
	"fmt"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/notification"

	"go.uber.org/zap"
)

// ReminderSweepJob fires configured interval reminders. Each tick it scans
// reminder-enabled jogs, fires the offsets whose minute bucket matches now,
// commits the advanced trigger counters, and only then dispatches the
// notifications. A missed minute bucket is gone; it is never re-fired.
type ReminderSweepJob struct {
	deps   *JobDeps
	adjust time.Duration
}

// NewReminderSweepJob creates a new reminder sweep job
func NewReminderSweepJob(deps *JobDeps, adjustMinutes int) *ReminderSweepJob {
	return &ReminderSweepJob{
		deps:   deps,
		adjust: time.Duration(adjustMinutes) * time.Minute,
	}
}

func (j *ReminderSweepJob) Name() string { return "reminder_sweep" }

// Due returns true for every tick
func (j *ReminderSweepJob) Due(now time.Time) bool { return true }

// Run executes one reminder sweep. Only upcoming jogs due today carry
// reminders: an offset for a jog due early tomorrow must not fire the
// prior evening.
func (j *ReminderSweepJob) Run(ctx context.Context, now time.Time) error {
	deleted := false
	enabled := true
	dayStart := common.StartOfDay(now, j.deps.Location)
	dayEnd := jog.EndOfDayBound(dayStart)
	jogs, err := j.deps.Jogs.Query(ctx, jog.JogFilter{
		Deleted:         &deleted,
		ReminderEnabled: &enabled,
		DueAfter:        &dayStart,
		DueBefore:       &dayEnd,
		Statuses: []common.CompleteStatus{
			common.StatusUpcoming,
		},
	})
	if err != nil {
		return NewJobRunError(j.Name(), err)
	}

	var updates []jog.JogUpdate
	userMessages := make(map[common.UserID][]notification.Message)

	for _, candidate := range jogs {
		if !candidate.Valid() {
			j.deps.Metrics.RecordJogSkipped()
			j.deps.Logger.Warn("Skipping malformed jog during reminder sweep",
				zap.String("jog_id", string(candidate.ID)))
			continue
		}

		triggered, groups, changed := jog.DueOffsets(candidate, now, j.adjust)
		if !changed {
			continue
		}

		updates = append(updates, jog.JogUpdate{
			ID: candidate.ID,
			Fields: map[string]interface{}{
				"reminderIntervals": groups,
				"updatedAt":         now,
			},
		})
		for _, t := range triggered {
			userMessages[candidate.UserID] = append(userMessages[candidate.UserID],
				reminderMessage(candidate, t))
		}
	}

	if len(updates) == 0 {
		return nil
	}

	// Trigger state commits before dispatch: a crash between the two loses
	// notifications rather than duplicating them.
	if err := j.deps.Jogs.BatchUpdate(ctx, updates); err != nil {
		return NewJobRunError(j.Name(), err)
	}

	j.deps.notifyUsers(ctx, j.Name(), userMessages)
	return nil
}

// reminderMessage builds the push payload for one fired offset
func reminderMessage(candidate *jog.Jog, t jog.TriggeredOffset) notification.Message {
	title := candidate.Title
	if t.StepTitle != "" {
		title = t.StepTitle
	}
	msg := notification.Message{
		Title: "Coming up: " + title,
		Body:  fmt.Sprintf("%s starts in %d minutes", title, t.Offset),
		Data: map[string]interface{}{
			"type":   "reminder",
			"userId": string(candidate.UserID),
			"jogId":  string(candidate.ID),
			"offset": t.Offset,
		},
	}
	if t.StepID != "" {
		msg.Data["stepId"] = string(t.StepID)
	}
	return msg
}
