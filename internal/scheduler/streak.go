package scheduler

import (
	"context"
	"fmt"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/notification"
	"jogapp-api/internal/stats"

	"go.uber.org/zap"
)

// StreakRollupJob extends or breaks each user's completion streak once a
// day, shortly before midnight. Users with no jogs due that day are left
// untouched: an empty day neither extends nor breaks a streak. The applied
// day key is recorded per user, so re-running inside the same day is a
// no-op for already-rolled users.
type StreakRollupJob struct {
	deps     *JobDeps
	atHour   int
	atMinute int
}

// NewStreakRollupJob creates a new streak rollup job. The rollup time is
// "HH:MM" in the canonical timezone.
func NewStreakRollupJob(deps *JobDeps, rollupTime string) (*StreakRollupJob, error) {
	parsed, err := time.Parse("15:04", rollupTime)
	if err != nil {
		return nil, NewConfigurationError("streak_rollup_time", rollupTime, "must be HH:MM")
	}
	return &StreakRollupJob{
		deps:     deps,
		atHour:   parsed.Hour(),
		atMinute: parsed.Minute(),
	}, nil
}

func (j *StreakRollupJob) Name() string { return "streak_rollup" }

// Due gates the job to the configured minute of the canonical day
func (j *StreakRollupJob) Due(now time.Time) bool {
	local := now.In(j.deps.Location)
	return local.Hour() == j.atHour && local.Minute() == j.atMinute
}

// Run executes one streak rollup for the day containing now
func (j *StreakRollupJob) Run(ctx context.Context, now time.Time) error {
	deleted := false
	dayStart := common.StartOfDay(now, j.deps.Location)
	dayEnd := jog.EndOfDayBound(dayStart)
	jogs, err := j.deps.Jogs.Query(ctx, jog.JogFilter{
		Deleted:   &deleted,
		DueAfter:  &dayStart,
		DueBefore: &dayEnd,
	})
	if err != nil {
		return NewJobRunError(j.Name(), err)
	}

	dayJogs := make([]stats.DayJog, 0, len(jogs))
	for _, candidate := range jogs {
		if !candidate.Valid() {
			j.deps.Metrics.RecordJogSkipped()
			continue
		}
		dayJogs = append(dayJogs, stats.DayJog{
			UserID:    candidate.UserID,
			Completed: candidate.CompleteStatus.IsCompleted(),
		})
	}

	// Every streak write commits before any dispatch; a delivery failure
	// must never leave a day half-rolled.
	dayKey := common.DayKey(now, j.deps.Location)
	userMessages := make(map[common.UserID][]notification.Message)
	for userID, outcome := range stats.RollupDay(dayJogs) {
		current, rolled, err := j.rollupUser(ctx, userID, outcome, dayKey)
		if err != nil {
			j.deps.Logger.Error("Failed to roll up streak",
				zap.String("user_id", string(userID)),
				zap.Error(err))
			continue
		}
		if rolled {
			userMessages[userID] = append(userMessages[userID],
				streakMessage(userID, outcome.CompletedAll, current))
		}
	}

	j.deps.notifyUsers(ctx, j.Name(), userMessages)
	return nil
}

// rollupUser applies one user's day outcome and reports the resulting
// streak. rolled is false when the day was already applied for this user.
func (j *StreakRollupJob) rollupUser(ctx context.Context, userID common.UserID, outcome stats.DayOutcome, dayKey string) (current int64, rolled bool, err error) {
	userStats, err := j.deps.Stats.GetOrInit(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	if userStats.JogStats.LastStreakDate == dayKey {
		return userStats.JogStats.CurrentStreak, false, nil
	}

	current, best := stats.NextStreak(
		userStats.JogStats.CurrentStreak,
		userStats.JogStats.BestStreak,
		outcome.CompletedAll)

	err = j.deps.Stats.Merge(ctx, userID, map[string]interface{}{
		stats.PathCurrentStreak:  current,
		stats.PathBestStreak:     best,
		stats.PathLastStreakDate: dayKey,
	})
	if err != nil {
		return 0, false, err
	}
	return current, true, nil
}

// streakMessage builds the daily summary push for one rolled-up user
func streakMessage(userID common.UserID, completedAll bool, current int64) notification.Message {
	msg := notification.Message{
		Data: map[string]interface{}{
			"type":   "streak_rollup",
			"userId": string(userID),
			"streak": current,
		},
	}
	if completedAll {
		msg.Title = "Streak extended"
		msg.Body = fmt.Sprintf("You completed every jog today. Current streak: %d days.", current)
	} else {
		msg.Title = "Streak broken"
		msg.Body = "You missed a jog today. Tomorrow is a fresh start."
	}
	return msg
}
