package scheduler

import (
	"context"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/config"
	"jogapp-api/internal/events"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/notification"
	"jogapp-api/internal/stats"

	"go.uber.org/zap"
)

// Job is one scheduled maintenance task. Every job must be idempotent per
// tick: running it twice at the same instant changes nothing the second
// time.
type Job interface {
	// Name identifies the job in logs, metrics and manual triggers
	Name() string

	// Due reports whether the job should do work on a tick at now. Sweep
	// jobs return true for every tick; daily jobs gate on a minute bucket.
	Due(now time.Time) bool

	// Run executes one tick of the job
	Run(ctx context.Context, now time.Time) error
}

// JobDeps bundles the collaborators the scheduled jobs share
type JobDeps struct {
	Jogs       jog.JogRepository
	JogService jog.JogService
	Stats      stats.StatsRepository
	Dispatcher notification.Dispatcher
	EventBus   events.EventBus
	Metrics    *SchedulerMetrics
	Location   *time.Location
	Logger     *zap.Logger
}

// DefaultJobs builds the full production job set
func DefaultJobs(cfg config.SchedulerConfig, deps *JobDeps) ([]Job, error) {
	streak, err := NewStreakRollupJob(deps, cfg.StreakRollupTime)
	if err != nil {
		return nil, err
	}
	return []Job{
		NewReminderSweepJob(deps, cfg.SweepAdjustmentMinutes),
		NewDueNowJob(deps),
		NewOverdueSweepJob(deps, cfg.GraceSeconds),
		NewMidnightRolloverJob(deps),
		streak,
		NewQuestionnaireJob(deps),
	}, nil
}

// notifyUsers resolves push tokens and dispatches one batch of messages.
// Delivery is best-effort: failures are counted and logged, never retried,
// and never abort the calling job.
func (d *JobDeps) notifyUsers(ctx context.Context, jobName string, userMessages map[common.UserID][]notification.Message) {
	var batch []notification.Message
	for userID, messages := range userMessages {
		userStats, err := d.Stats.GetOrInit(ctx, userID)
		if err != nil {
			d.Logger.Warn("Failed to resolve push token, dropping notifications",
				zap.String("user_id", string(userID)),
				zap.Int("count", len(messages)),
				zap.Error(err))
			continue
		}
		if userStats.PushToken == "" {
			d.Logger.Debug("User has no push token, dropping notifications",
				zap.String("user_id", string(userID)),
				zap.Int("count", len(messages)))
			continue
		}
		for _, msg := range messages {
			msg.To = userStats.PushToken
			batch = append(batch, msg)
		}
	}

	if len(batch) == 0 {
		return
	}

	results, err := d.Dispatcher.SendBatch(ctx, batch)
	if err != nil {
		d.Logger.Error("Notification dispatch failed", zap.Error(err))
		d.Metrics.RecordDispatch(0, int64(len(batch)))
		d.countDispatch(ctx, batch, nil)
		return
	}

	var sent, failed int64
	for _, r := range results {
		if r.OK {
			sent++
		} else {
			failed++
		}
	}
	d.Metrics.RecordDispatch(sent, failed)
	d.countDispatch(ctx, batch, results)

	d.EventBus.Publish(events.TopicNotificationsDispatched, events.NotificationsDispatched{
		Event:     events.NewEvent(),
		Job:       jobName,
		Sent:      int(sent),
		Failed:    int(failed),
		BatchSize: len(batch),
	})
}

// countDispatch folds per-user sent/failed counts into the usage
// aggregates. A nil results slice means the whole batch failed in transit.
func (d *JobDeps) countDispatch(ctx context.Context, batch []notification.Message, results []notification.DeliveryResult) {
	type outcome struct{ sent, failed int64 }
	byUser := make(map[common.UserID]*outcome)
	for i := range batch {
		userID, ok := batch[i].Data["userId"].(string)
		if !ok || userID == "" {
			continue
		}
		o := byUser[common.UserID(userID)]
		if o == nil {
			o = &outcome{}
			byUser[common.UserID(userID)] = o
		}
		// A short result slice marks the uncovered tail as failed
		if i < len(results) && results[i].OK {
			o.sent++
		} else {
			o.failed++
		}
	}

	for userID, o := range byUser {
		err := d.Stats.IncrementPaths(ctx, userID, map[string]int64{
			stats.PathNotificationsSent:   o.sent,
			stats.PathNotificationsFailed: o.failed,
		})
		if err != nil {
			d.Logger.Warn("Failed to count dispatched notifications",
				zap.String("user_id", string(userID)),
				zap.Error(err))
		}
	}
}
