package planner

import (
	"context"
	"fmt"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/events"
	"jogapp-api/internal/jog"

	"go.uber.org/zap"
)

// PlanService defines the interface for plan generation and materialization
type PlanService interface {
	// PlanDay generates a plan from a free-text day description and
	// materializes each usable entry as a jog. Malformed entries are
	// skipped, never fatal: a fully unusable plan yields zero jogs.
	PlanDay(ctx context.Context, userID common.UserID, description string, date time.Time) ([]*jog.Jog, error)
}

// planService implements the PlanService interface
type planService struct {
	provider PlanProvider
	jogs     jog.JogService
	eventBus events.EventBus
	location *time.Location
	logger   *zap.Logger
}

// NewPlanService creates a new instance of PlanService
func NewPlanService(provider PlanProvider, jogs jog.JogService, eventBus events.EventBus, location *time.Location, logger *zap.Logger) PlanService {
	return &planService{
		provider: provider,
		jogs:     jogs,
		eventBus: eventBus,
		location: location,
		logger:   logger,
	}
}

// PlanDay generates and materializes a day plan
func (s *planService) PlanDay(ctx context.Context, userID common.UserID, description string, date time.Time) ([]*jog.Jog, error) {
	if description == "" {
		return nil, jog.NewJogValidationError("description", "", "day description is required")
	}

	resp, err := s.provider.GeneratePlan(ctx, PlanRequest{
		UserID:      userID,
		Description: description,
		Date:        date.In(s.location).Format(common.DayKeyFormat),
		Timezone:    s.location.String(),
	})
	if err != nil {
		return nil, err
	}

	created := make([]*jog.Jog, 0, len(resp.Plans))
	skipped := 0
	for i, plan := range resp.Plans {
		j, err := s.materialize(userID, plan, date)
		if err != nil {
			skipped++
			s.logger.Warn("Skipping malformed plan entry",
				zap.Int("index", i),
				zap.String("jog_name", plan.JogName),
				zap.Error(err))
			continue
		}
		if err := s.jogs.CreateJog(ctx, j); err != nil {
			skipped++
			s.logger.Error("Failed to create planned jog",
				zap.String("jog_name", plan.JogName),
				zap.Error(err))
			continue
		}
		created = append(created, j)
	}

	s.eventBus.Publish(events.TopicPlanGenerated, events.PlanGenerated{
		Event:        events.NewEvent(),
		UserID:       string(userID),
		JogsCreated:  len(created),
		PlansSkipped: skipped,
	})

	s.logger.Info("Day plan materialized",
		zap.String("user_id", string(userID)),
		zap.Int("jogs_created", len(created)),
		zap.Int("plans_skipped", skipped))
	return created, nil
}

// materialize converts one plan entry into an unvalidated jog. The jog
// service applies full validation on create.
func (s *planService) materialize(userID common.UserID, plan JogPlan, date time.Time) (*jog.Jog, error) {
	if plan.JogName == "" {
		return nil, NewMalformedPlanError("missing jog name", "")
	}

	dueDate, err := s.resolveTime(plan.StartTime, date)
	if err != nil {
		return nil, err
	}

	offsets := filterOffsets(plan.ReminderTimes)
	var intervals []jog.IntervalGroup
	if len(offsets) > 0 {
		intervals = []jog.IntervalGroup{jog.NewIntervalGroup(offsets)}
	}

	j := &jog.Jog{
		UserID:            userID,
		Title:             plan.JogName,
		DueDate:           dueDate,
		Category:          plan.Category,
		IsAI:              true,
		IsStepBased:       plan.IsStepBased,
		ReminderEnabled:   len(intervals) > 0,
		ReminderIntervals: intervals,
	}

	if plan.IsStepBased {
		if len(plan.Steps) == 0 {
			return nil, NewMalformedPlanError("step-based plan without steps", plan.JogName)
		}
		for _, sp := range plan.Steps {
			if sp.StepName == "" {
				return nil, NewMalformedPlanError("missing step name", plan.JogName)
			}
			stepDue, err := s.resolveTime(sp.StartTime, date)
			if err != nil {
				return nil, err
			}
			j.Steps = append(j.Steps, jog.Step{
				Title:   sp.StepName,
				DueDate: stepDue,
			})
		}
	}

	return j, nil
}

// resolveTime combines an HH:MM plan time with the plan date in the
// canonical timezone
func (s *planService) resolveTime(hhmm string, date time.Time) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, NewMalformedPlanError(fmt.Sprintf("invalid start time %q", hhmm), err.Error())
	}
	local := date.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, s.location), nil
}

// filterOffsets keeps only offsets the reminder engine accepts
func filterOffsets(offsets []int) []int {
	var kept []int
	for _, m := range offsets {
		if jog.AllowedReminderOffsets[m] {
			kept = append(kept, m)
		}
	}
	return kept
}
