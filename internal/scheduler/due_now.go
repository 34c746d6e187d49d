package scheduler

import (
	"context"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/notification"

	"go.uber.org/zap"
)

// DueNowJob sends the "it's time" notification for jogs and steps whose due
// instant falls in the current minute bucket. It carries no trigger budget:
// the minute-bucket match alone makes each due instant fire at most once.
type DueNowJob struct {
	deps *JobDeps
}

// NewDueNowJob creates a new due-now job
func NewDueNowJob(deps *JobDeps) *DueNowJob {
	return &DueNowJob{deps: deps}
}

func (j *DueNowJob) Name() string { return "due_now" }

// Due returns true for every tick
func (j *DueNowJob) Due(now time.Time) bool { return true }

// Run executes one due-now sweep
func (j *DueNowJob) Run(ctx context.Context, now time.Time) error {
	deleted := false
	jogs, err := j.deps.Jogs.Query(ctx, jog.JogFilter{
		Deleted: &deleted,
		Statuses: []common.CompleteStatus{
			common.StatusLoading,
			common.StatusUpcoming,
			common.StatusOverdue,
		},
	})
	if err != nil {
		return NewJobRunError(j.Name(), err)
	}

	userMessages := make(map[common.UserID][]notification.Message)
	for _, candidate := range jogs {
		if !candidate.Valid() {
			j.deps.Metrics.RecordJogSkipped()
			j.deps.Logger.Warn("Skipping malformed jog during due-now sweep",
				zap.String("jog_id", string(candidate.ID)))
			continue
		}

		if candidate.IsStepBased {
			for _, step := range candidate.DueNowSteps(now) {
				userMessages[candidate.UserID] = append(userMessages[candidate.UserID],
					dueNowMessage(candidate, step.Title, string(step.ID)))
			}
			continue
		}
		if candidate.IsDueNow(now) {
			userMessages[candidate.UserID] = append(userMessages[candidate.UserID],
				dueNowMessage(candidate, candidate.Title, ""))
		}
	}

	j.deps.notifyUsers(ctx, j.Name(), userMessages)
	return nil
}

// dueNowMessage builds the push payload for one due instant
func dueNowMessage(candidate *jog.Jog, title, stepID string) notification.Message {
	msg := notification.Message{
		Title: "It's time",
		Body:  title + " starts now",
		Data: map[string]interface{}{
			"type":   "due_now",
			"userId": string(candidate.UserID),
			"jogId":  string(candidate.ID),
		},
	}
	if stepID != "" {
		msg.Data["stepId"] = stepID
	}
	return msg
}
