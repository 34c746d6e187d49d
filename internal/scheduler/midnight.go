package scheduler

import (
	"context"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"

	"go.uber.org/zap"
)

// MidnightRolloverJob closes out the ended day at 00:00 canonical time:
// every unfinished jog whose day has passed becomes incomplete, and the
// questionnaire fired-flags reset for the new day. The job is a stateless
// minute-gated tick, so a restart inside the midnight minute re-runs it
// harmlessly: already-rolled jogs produce no further transition.
type MidnightRolloverJob struct {
	deps *JobDeps
}

// NewMidnightRolloverJob creates a new midnight rollover job
func NewMidnightRolloverJob(deps *JobDeps) *MidnightRolloverJob {
	return &MidnightRolloverJob{deps: deps}
}

func (j *MidnightRolloverJob) Name() string { return "midnight_rollover" }

// Due gates the job to the first minute of the canonical day
func (j *MidnightRolloverJob) Due(now time.Time) bool {
	local := now.In(j.deps.Location)
	return local.Hour() == 0 && local.Minute() == 0
}

// Run executes one rollover
func (j *MidnightRolloverJob) Run(ctx context.Context, now time.Time) error {
	deleted := false
	dayStart := common.StartOfDay(now, j.deps.Location)
	jogs, err := j.deps.Jogs.Query(ctx, jog.JogFilter{
		Deleted:   &deleted,
		DueBefore: &dayStart,
		Statuses: []common.CompleteStatus{
			common.StatusLoading,
			common.StatusUpcoming,
			common.StatusOverdue,
		},
	})
	if err != nil {
		return NewJobRunError(j.Name(), err)
	}

	rolled := 0
	for _, candidate := range jogs {
		if !candidate.Valid() {
			j.deps.Metrics.RecordJogSkipped()
			j.deps.Logger.Warn("Skipping malformed jog during midnight rollover",
				zap.String("jog_id", string(candidate.ID)))
			continue
		}
		if err := j.deps.JogService.Recompute(ctx, candidate.ID); err != nil {
			j.deps.Logger.Error("Failed to roll jog over to incomplete",
				zap.String("jog_id", string(candidate.ID)),
				zap.Error(err))
			continue
		}
		rolled++
	}

	if err := j.deps.Stats.ResetQuestionnaireReady(ctx); err != nil {
		j.deps.Logger.Error("Failed to reset questionnaire flags", zap.Error(err))
	}

	j.deps.Logger.Info("Midnight rollover finished",
		zap.Int("candidates", len(jogs)),
		zap.Int("rolled", rolled))
	return nil
}
