package scheduler

import (
	"context"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"

	"go.uber.org/zap"
)

// OverdueSweepJob promotes unfinished jogs past their due instant to
// overdue. The grace period keeps a jog from flipping in the same minute
// the user is likely to complete it.
type OverdueSweepJob struct {
	deps  *JobDeps
	grace time.Duration
}

// NewOverdueSweepJob creates a new overdue sweep job
func NewOverdueSweepJob(deps *JobDeps, graceSeconds int) *OverdueSweepJob {
	return &OverdueSweepJob{
		deps:  deps,
		grace: time.Duration(graceSeconds) * time.Second,
	}
}

func (j *OverdueSweepJob) Name() string { return "overdue_sweep" }

// Due returns true for every tick
func (j *OverdueSweepJob) Due(now time.Time) bool { return true }

// Run executes one overdue sweep. Status transitions go through the shared
// recomputation engine, so counter folding and event publication match the
// reactive path exactly.
func (j *OverdueSweepJob) Run(ctx context.Context, now time.Time) error {
	deleted := false
	cutoff := now.Add(-j.grace)
	jogs, err := j.deps.Jogs.Query(ctx, jog.JogFilter{
		Deleted:   &deleted,
		DueBefore: &cutoff,
		Statuses: []common.CompleteStatus{
			common.StatusLoading,
			common.StatusUpcoming,
		},
	})
	if err != nil {
		return NewJobRunError(j.Name(), err)
	}

	for _, candidate := range jogs {
		if !candidate.Valid() {
			j.deps.Metrics.RecordJogSkipped()
			j.deps.Logger.Warn("Skipping malformed jog during overdue sweep",
				zap.String("jog_id", string(candidate.ID)))
			continue
		}
		if err := j.deps.JogService.Recompute(ctx, candidate.ID); err != nil {
			j.deps.Logger.Error("Failed to promote jog to overdue",
				zap.String("jog_id", string(candidate.ID)),
				zap.Error(err))
		}
	}
	return nil
}
