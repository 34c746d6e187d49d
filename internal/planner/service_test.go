package planner

import (
	"context"
	"sync"
	"testing"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/events"
	"jogapp-api/internal/jog"
	"jogapp-api/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingEventBus records published events without delivering them
type recordingEventBus struct {
	mu        sync.RWMutex
	published map[string][]interface{}
}

func newRecordingEventBus() *recordingEventBus {
	return &recordingEventBus{published: make(map[string][]interface{})}
}

func (b *recordingEventBus) Publish(topic string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published[topic] = append(b.published[topic], data)
	return nil
}

func (b *recordingEventBus) Subscribe(topic string, handler interface{}) error   { return nil }
func (b *recordingEventBus) Unsubscribe(topic string, handler interface{}) error { return nil }
func (b *recordingEventBus) Close() error                                        { return nil }

func (b *recordingEventBus) Events(topic string) []interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.published[topic]
}

type planFixture struct {
	service  PlanService
	provider *MockPlanProvider
	repo     *jog.MockJogRepository
	bus      *recordingEventBus
}

func newPlanFixture(t *testing.T, now time.Time) *planFixture {
	provider := NewMockPlanProvider()
	repo := jog.NewMockJogRepository()
	bus := newRecordingEventBus()
	clock := common.NewMockClock(now)
	logger := zaptest.NewLogger(t)
	jogService := jog.NewJogService(repo, stats.NewMockStatsRepository(), bus, clock, time.UTC, logger)
	service := NewPlanService(provider, jogService, bus, time.UTC, logger)
	return &planFixture{
		service:  service,
		provider: provider,
		repo:     repo,
		bus:      bus,
	}
}

func TestPlanService_PlanDay(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f := newPlanFixture(t, date.Add(7*time.Hour))

	f.provider.SetResponse(&PlanResponse{
		Plans: []JogPlan{
			{
				JogName:       "Morning stretch",
				StartTime:     "08:30",
				ReminderTimes: []int{5, 30},
				Category:      "health",
			},
			{
				JogName:     "Pack for trip",
				StartTime:   "19:00",
				IsStepBased: true,
				Steps: []StepPlan{
					{StepName: "Find suitcase", StartTime: "18:00"},
					{StepName: "Pack clothes", StartTime: "18:30"},
				},
			},
		},
	})

	created, err := f.service.PlanDay(context.Background(), "user-1", "stretch in the morning, pack in the evening", date)
	require.NoError(t, err)
	require.Len(t, created, 2)

	first := created[0]
	assert.Equal(t, "Morning stretch", first.Title)
	assert.True(t, first.IsAI)
	assert.True(t, first.ReminderEnabled)
	require.Len(t, first.ReminderIntervals, 1)
	assert.Equal(t, []int{5, 30}, first.ReminderIntervals[0].Intervals)
	assert.Equal(t, time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC), first.DueDate)

	second := created[1]
	assert.True(t, second.IsStepBased)
	require.Len(t, second.Steps, 2)
	assert.Equal(t, time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC), second.Steps[0].DueDate)

	assert.Equal(t, 2, f.repo.JogCount())

	planEvents := f.bus.Events(events.TopicPlanGenerated)
	require.Len(t, planEvents, 1)
	generated := planEvents[0].(events.PlanGenerated)
	assert.Equal(t, 2, generated.JogsCreated)
	assert.Equal(t, 0, generated.PlansSkipped)
}

func TestPlanService_PlanDay_SkipsMalformedEntries(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f := newPlanFixture(t, date.Add(7*time.Hour))

	f.provider.SetResponse(&PlanResponse{
		Plans: []JogPlan{
			{JogName: "", StartTime: "08:30"},
			{JogName: "Bad clock", StartTime: "25:99"},
			{JogName: "Stepless", StartTime: "10:00", IsStepBased: true},
			{JogName: "Good one", StartTime: "11:00"},
		},
	})

	created, err := f.service.PlanDay(context.Background(), "user-1", "a messy day", date)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Good one", created[0].Title)

	generated := f.bus.Events(events.TopicPlanGenerated)[0].(events.PlanGenerated)
	assert.Equal(t, 1, generated.JogsCreated)
	assert.Equal(t, 3, generated.PlansSkipped)
}

func TestPlanService_PlanDay_FiltersUnknownOffsets(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f := newPlanFixture(t, date.Add(7*time.Hour))

	f.provider.SetResponse(&PlanResponse{
		Plans: []JogPlan{
			{JogName: "Walk", StartTime: "09:00", ReminderTimes: []int{7, 15, 45}},
		},
	})

	created, err := f.service.PlanDay(context.Background(), "user-1", "walk", date)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Len(t, created[0].ReminderIntervals, 1)
	assert.Equal(t, []int{15}, created[0].ReminderIntervals[0].Intervals)
}

func TestPlanService_PlanDay_EmptyPlanYieldsNoJogs(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f := newPlanFixture(t, date.Add(7*time.Hour))

	created, err := f.service.PlanDay(context.Background(), "user-1", "nothing parses", date)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Equal(t, 0, f.repo.JogCount())
}

func TestPlanService_PlanDay_ProviderError(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f := newPlanFixture(t, date.Add(7*time.Hour))
	f.provider.SetError(NewAPIError(503, ErrorCodeServiceUnavailable, "down", ""))

	_, err := f.service.PlanDay(context.Background(), "user-1", "anything", date)
	assert.Error(t, err)
	assert.Empty(t, f.bus.Events(events.TopicPlanGenerated))
}

func TestPlanService_PlanDay_RequiresDescription(t *testing.T) {
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	f := newPlanFixture(t, date.Add(7*time.Hour))

	_, err := f.service.PlanDay(context.Background(), "user-1", "", date)
	assert.True(t, jog.IsValidationError(err))
	assert.Empty(t, f.provider.Requests())
}
