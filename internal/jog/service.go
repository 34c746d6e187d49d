package jog

import (
	"context"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/events"
	"jogapp-api/internal/stats"

	"go.uber.org/zap"
)

// JogService defines the interface for jog operations
type JogService interface {
	CreateJog(ctx context.Context, j *Jog) error
	GetJogs(ctx context.Context, userID common.UserID, filter JogFilter) ([]*Jog, error)
	CompleteJog(ctx context.Context, jogID common.JogID) error
	CompleteStep(ctx context.Context, jogID common.JogID, stepID common.StepID) error
	DeleteJog(ctx context.Context, jogID common.JogID) error

	// Recompute re-evaluates a jog's lifecycle status against the current
	// time and folds any transition into the user's aggregates. Shared by
	// the on-write reactive path and the periodic sweeps.
	Recompute(ctx context.Context, jogID common.JogID) error
}

// jogService implements the JogService interface
type jogService struct {
	repository JogRepository
	stats      stats.StatsRepository
	eventBus   events.EventBus
	validator  *JogValidator
	clock      common.Clock
	location   *time.Location
	logger     *zap.Logger
}

// NewJogService creates a new instance of JogService
func NewJogService(repository JogRepository, statsRepo stats.StatsRepository, eventBus events.EventBus, clock common.Clock, location *time.Location, logger *zap.Logger) JogService {
	service := &jogService{
		repository: repository,
		stats:      statsRepo,
		eventBus:   eventBus,
		validator:  NewJogValidator(),
		clock:      clock,
		location:   location,
		logger:     logger,
	}

	service.setupEventSubscriptions()

	return service
}

// setupEventSubscriptions wires the reactive recomputation path: every
// observed store write re-evaluates the jog's status.
func (s *jogService) setupEventSubscriptions() {
	if err := s.eventBus.Subscribe(events.TopicJogChanged, s.handleJogChanged); err != nil {
		s.logger.Error("Failed to subscribe to JogChanged events", zap.Error(err))
	}
}

// CreateJog creates a new jog
func (s *jogService) CreateJog(ctx context.Context, j *Jog) error {
	s.logger.Info("Creating jog",
		zap.String("user_id", string(j.UserID)),
		zap.String("title", j.Title))

	if err := s.validator.ValidateJog(j); err != nil {
		s.logger.Error("Jog validation failed", zap.Error(err))
		return err
	}

	now := s.clock.Now()
	if j.ID == "" {
		j.ID = common.JogID(common.NewID())
	}
	for i := range j.Steps {
		if j.Steps[i].ID == "" {
			j.Steps[i].ID = common.StepID(common.NewID())
		}
		j.Steps[i].CompleteStatus = ComputeStepStatus(j.Steps[i], now, s.location)
	}
	j.CreatedAt = now
	j.UpdatedAt = now
	j.CompleteStatus = ComputeStatus(j, now, s.location)

	if err := s.repository.Create(ctx, j); err != nil {
		s.logger.Error("Failed to create jog in repository", zap.Error(err))
		return err
	}

	if err := s.applyCreationCounters(ctx, j); err != nil {
		s.logger.Error("Failed to apply creation counters",
			zap.String("jog_id", string(j.ID)),
			zap.Error(err))
	}

	// A jog due in the past is born into a counted bucket. Fold that
	// initial state now, so a later transition never decrements a bucket
	// that was never incremented.
	if err := s.applyStatusDelta(ctx, j.UserID, j.DueDate, common.StatusLoading, j.CompleteStatus); err != nil {
		s.logger.Error("Failed to fold creation status into counters",
			zap.String("jog_id", string(j.ID)),
			zap.Error(err))
	}

	s.eventBus.Publish(events.TopicJogCreated, events.JogCreated{
		Event:       events.NewEvent(),
		JogID:       string(j.ID),
		UserID:      string(j.UserID),
		Title:       j.Title,
		DueDate:     j.DueDate,
		IsStepBased: j.IsStepBased,
		IsAI:        j.IsAI,
		Category:    j.Category,
	})

	s.logger.Info("Jog created successfully", zap.String("jog_id", string(j.ID)))
	return nil
}

// GetJogs retrieves jogs for a user with optional filtering
func (s *jogService) GetJogs(ctx context.Context, userID common.UserID, filter JogFilter) ([]*Jog, error) {
	if err := s.validator.ValidateJogFilter(filter); err != nil {
		return nil, err
	}
	filter.UserID = &userID
	return s.repository.Query(ctx, filter)
}

// CompleteJog marks a jog completed and folds the transition into the
// user's aggregates
func (s *jogService) CompleteJog(ctx context.Context, jogID common.JogID) error {
	j, err := s.repository.GetByID(ctx, jogID)
	if err != nil {
		return err
	}
	if j.Deleted {
		return NewBusinessRuleError("deleted_jog", "cannot complete a deleted jog")
	}
	if j.Completed {
		return NewBusinessRuleError("already_completed", "jog is already completed")
	}

	now := s.clock.Now()
	oldStatus := j.CompleteStatus

	j.Completed = true
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.CompleteStatus = ComputeStatus(j, now, s.location)
	if j.IsStepBased {
		j.Steps = StepsOnParentCompleted(j.Steps, now)
	}

	if err := s.repository.Update(ctx, j); err != nil {
		return err
	}

	if err := s.applyStatusDelta(ctx, j.UserID, j.DueDate, oldStatus, j.CompleteStatus); err != nil {
		s.logger.Error("Failed to fold completion into aggregates",
			zap.String("jog_id", string(jogID)),
			zap.Error(err))
	}

	s.publishStatusChanged(j, oldStatus)
	s.eventBus.Publish(events.TopicJogCompleted, events.JogCompleted{
		Event:       events.NewEvent(),
		JogID:       string(j.ID),
		UserID:      string(j.UserID),
		CompletedAt: now,
		OnTime:      j.CompleteStatus == common.StatusCompletedOnTime,
	})

	s.logger.Info("Jog completed",
		zap.String("jog_id", string(jogID)),
		zap.String("status", string(j.CompleteStatus)))
	return nil
}

// CompleteStep marks one step of a step-based jog completed. The parent's
// own status is not derived from its steps; the scheduler tracks them
// independently.
func (s *jogService) CompleteStep(ctx context.Context, jogID common.JogID, stepID common.StepID) error {
	j, err := s.repository.GetByID(ctx, jogID)
	if err != nil {
		return err
	}
	if !j.IsStepBased {
		return NewBusinessRuleError("not_step_based", "jog has no steps")
	}

	now := s.clock.Now()
	found := false
	for i := range j.Steps {
		if j.Steps[i].ID != stepID {
			continue
		}
		found = true
		if j.Steps[i].Completed {
			return NewBusinessRuleError("already_completed", "step is already completed")
		}
		j.Steps[i].Completed = true
		if !now.After(j.Steps[i].DueDate) {
			j.Steps[i].CompleteStatus = common.StatusCompletedOnTime
		} else {
			j.Steps[i].CompleteStatus = common.StatusCompletedLate
		}
		break
	}
	if !found {
		return ErrStepNotFound
	}

	j.UpdatedAt = now
	if err := s.repository.Update(ctx, j); err != nil {
		return err
	}

	s.logger.Info("Step completed",
		zap.String("jog_id", string(jogID)),
		zap.String("step_id", string(stepID)))
	return nil
}

// DeleteJog soft-deletes a jog. Deleted jogs drop out of all future sweeps
// and aggregates but already-counted transitions stay counted.
func (s *jogService) DeleteJog(ctx context.Context, jogID common.JogID) error {
	j, err := s.repository.GetByID(ctx, jogID)
	if err != nil {
		return err
	}
	if j.Deleted {
		return NewBusinessRuleError("already_deleted", "jog is already deleted")
	}

	now := s.clock.Now()
	if err := s.repository.SoftDelete(ctx, jogID, now); err != nil {
		return err
	}

	if err := s.stats.IncrementPath(ctx, j.UserID, stats.PathDeletedJogCount, 1); err != nil {
		s.logger.Error("Failed to count jog deletion",
			zap.String("jog_id", string(jogID)),
			zap.Error(err))
	}

	s.eventBus.Publish(events.TopicJogDeleted, events.JogDeleted{
		Event:  events.NewEvent(),
		JogID:  string(jogID),
		UserID: string(j.UserID),
	})

	s.logger.Info("Jog deleted", zap.String("jog_id", string(jogID)))
	return nil
}

// Recompute re-evaluates a jog's status against the current time. Running
// it twice with no time change is a no-op the second time: the status is
// unchanged so no write happens and no delta is folded.
func (s *jogService) Recompute(ctx context.Context, jogID common.JogID) error {
	j, err := s.repository.GetByID(ctx, jogID)
	if err != nil {
		return err
	}
	if j.Deleted {
		return nil
	}

	now := s.clock.Now()
	oldStatus := j.CompleteStatus
	newStatus := ComputeStatus(j, now, s.location)
	if newStatus == oldStatus {
		return nil
	}

	fields := map[string]interface{}{
		"completeStatus": newStatus,
		"updatedAt":      now,
	}
	if newStatus == common.StatusIncomplete && j.IsStepBased {
		fields["steps"] = StepsOnParentIncomplete(j.Steps)
	}

	// Partial-field update rather than a document replace so a concurrent
	// interval-counter write is never clobbered.
	if err := s.repository.BatchUpdate(ctx, []JogUpdate{{ID: j.ID, Fields: fields}}); err != nil {
		return err
	}

	if err := s.applyStatusDelta(ctx, j.UserID, j.DueDate, oldStatus, newStatus); err != nil {
		s.logger.Error("Failed to fold status transition into aggregates",
			zap.String("jog_id", string(jogID)),
			zap.Error(err))
	}

	j.CompleteStatus = newStatus
	s.publishStatusChanged(j, oldStatus)
	return nil
}

// handleJogChanged handles store change notifications
func (s *jogService) handleJogChanged(event events.JogChanged) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Recompute(ctx, common.JogID(event.JogID)); err != nil && !IsNotFoundError(err) {
		s.logger.Error("Reactive status recomputation failed",
			zap.String("jog_id", event.JogID),
			zap.Error(err))
	}
}

// applyCreationCounters folds a newly created jog into the user's counters
func (s *jogService) applyCreationCounters(ctx context.Context, j *Jog) error {
	dayKey := common.DayKey(j.DueDate, s.location)
	increments := map[string]int64{
		stats.PathTotalJogsCreated:         1,
		stats.DailyJogsCreatedPath(dayKey): 1,
	}
	if j.IsStepBased {
		increments[stats.PathTotalStepBasedJogsCreated] = 1
	}
	if j.IsAI {
		increments[stats.PathTotalAIJogsCreated] = 1
	}
	if j.Category != "" {
		increments[stats.CategoryPath(j.Category)] = 1
	}
	return s.stats.IncrementPaths(ctx, j.UserID, increments)
}

// applyStatusDelta folds one status transition into both the global and the
// per-day completion-rate buckets. The delta increments the new bucket and
// decrements the old one, so repeated evaluation cannot double count.
func (s *jogService) applyStatusDelta(ctx context.Context, userID common.UserID, dueDate time.Time, old, new common.CompleteStatus) error {
	d := DeltaFor(old, new)
	if d.IsZero() {
		return nil
	}

	dayKey := common.DayKey(dueDate, s.location)
	increments := map[string]int64{}
	addCompletionDelta(increments, stats.CompletionRatePath, d)
	addCompletionDelta(increments, func(field string) string {
		return stats.DailyCompletionRatePath(dayKey, field)
	}, d)

	return s.stats.IncrementPaths(ctx, userID, increments)
}

func addCompletionDelta(increments map[string]int64, path func(string) string, d StatusDelta) {
	if d.CompletedOnTime != 0 {
		increments[path(stats.FieldCompletedOnTimeTotal)] += d.CompletedOnTime
	}
	if d.CompletedLate != 0 {
		increments[path(stats.FieldCompletedLateTotal)] += d.CompletedLate
	}
	if d.Missed != 0 {
		increments[path(stats.FieldMissedJogsTotal)] += d.Missed
	}
	if d.TotalCompleted != 0 {
		increments[path(stats.FieldTotalJogsCompleted)] += d.TotalCompleted
	}
}

func (s *jogService) publishStatusChanged(j *Jog, oldStatus common.CompleteStatus) {
	s.eventBus.Publish(events.TopicStatusChanged, events.StatusChanged{
		Event:     events.NewEvent(),
		JogID:     string(j.ID),
		UserID:    string(j.UserID),
		OldStatus: string(oldStatus),
		NewStatus: string(j.CompleteStatus),
	})
}
