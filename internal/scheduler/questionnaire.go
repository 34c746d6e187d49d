package scheduler

import (
	"context"
	"fmt"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/notification"
	"jogapp-api/internal/stats"

	"go.uber.org/zap"
)

// QuestionnaireJob prompts users to fill their daily symptom questionnaire
// at their chosen time. The ready flag marks a user as prompted; it is set
// here and cleared by the midnight rollover, so a user is prompted at most
// once per day.
type QuestionnaireJob struct {
	deps *JobDeps
}

// NewQuestionnaireJob creates a new questionnaire job
func NewQuestionnaireJob(deps *JobDeps) *QuestionnaireJob {
	return &QuestionnaireJob{deps: deps}
}

func (j *QuestionnaireJob) Name() string { return "questionnaire" }

// Due returns true for every tick; the per-user time gate lives in Run
func (j *QuestionnaireJob) Due(now time.Time) bool { return true }

// Run prompts every candidate whose configured minute has arrived
func (j *QuestionnaireJob) Run(ctx context.Context, now time.Time) error {
	candidates, err := j.deps.Stats.ListQuestionnaireCandidates(ctx)
	if err != nil {
		return NewJobRunError(j.Name(), err)
	}

	local := now.In(j.deps.Location)
	userMessages := make(map[common.UserID][]notification.Message)
	for _, candidate := range candidates {
		due, err := questionnaireDue(candidate.SymptomStats.QuestionnaireTime, local)
		if err != nil {
			j.deps.Logger.Warn("Skipping user with malformed questionnaire time",
				zap.String("user_id", string(candidate.UserID)),
				zap.String("questionnaire_time", candidate.SymptomStats.QuestionnaireTime))
			continue
		}
		if !due {
			continue
		}

		// Flag first: a dispatch failure must not re-prompt every minute
		// for the rest of the day.
		if err := j.deps.Stats.Merge(ctx, candidate.UserID, map[string]interface{}{
			stats.PathQuestionnaireReady: true,
		}); err != nil {
			j.deps.Logger.Error("Failed to mark questionnaire prompted",
				zap.String("user_id", string(candidate.UserID)),
				zap.Error(err))
			continue
		}

		userMessages[candidate.UserID] = append(userMessages[candidate.UserID], notification.Message{
			Title: "Daily check-in",
			Body:  "How was your day? Your questionnaire is ready.",
			Data: map[string]interface{}{
				"type":   "questionnaire",
				"userId": string(candidate.UserID),
			},
		})
	}

	j.deps.notifyUsers(ctx, j.Name(), userMessages)
	return nil
}

// questionnaireDue reports whether the configured HH:MM has arrived in the
// current or an earlier minute of the local day. Matching on "arrived"
// rather than "equals" means a tick lost to downtime still prompts on the
// next tick instead of silently skipping the day.
func questionnaireDue(hhmm string, local time.Time) (bool, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return false, fmt.Errorf("invalid questionnaire time %q: %w", hhmm, err)
	}
	nowMinutes := local.Hour()*60 + local.Minute()
	atMinutes := parsed.Hour()*60 + parsed.Minute()
	return nowMinutes >= atMinutes, nil
}
